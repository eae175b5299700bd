package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/testbuild/internal/cargo"
)

func TestLoad_MissingDefaultPathUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(DefaultPath)
	require.NoError(t, err)

	assert.Equal(t, "cargo", cfg.Build.Binary)
	assert.Equal(t, "Executable", cfg.Extract.Marker)
	assert.Equal(t, cargo.SelectFirst, cfg.Selection())
	assert.Equal(t, filepath.Join(".vim", "test_binary_path"), cfg.SettingsFilePath())
	assert.Equal(t, 20, cfg.History.Limit)
	assert.Equal(t, []string{"src"}, cfg.Watch.Dirs)
	assert.Equal(t, 2, cfg.Watch.DebounceSeconds)
	assert.Equal(t, "codelldb", cfg.Adapter.Command)
	assert.True(t, cfg.HistoryEnabled())
}

func TestLoad_MissingExplicitPathFails(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load("nope.yaml")
	require.Error(t, err)
}

func TestLoad_ParsesFileAndKeepsPortPlaceholder(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := `
build:
  dir: crates/game
  extra_args: [--workspace]
extract:
  select: last
settings:
  dir: .nvim
adapter:
  port_arg: --port ${port}
`
	path := filepath.Join(dir, "testbuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "crates/game", cfg.Build.Dir)
	assert.Equal(t, []string{"--workspace"}, cfg.Build.ExtraArgs)
	assert.Equal(t, cargo.SelectLast, cfg.Selection())
	assert.Equal(t, filepath.Join(".nvim", "test_binary_path"), cfg.SettingsFilePath())
	// ${port} is the editor's substitution variable, not an env reference.
	assert.Equal(t, "--port ${port}", cfg.Adapter.PortArg)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("TB_SETTINGS_DIR", ".config/editor")
	content := "settings:\n  dir: ${TB_SETTINGS_DIR}\n"
	path := filepath.Join(dir, "testbuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ".config/editor", cfg.Settings.Dir)
}

func TestLoad_InvalidSelection(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "testbuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte("extract:\n  select: newest\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract.select")
}

func TestLoad_HistoryOff(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "testbuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history:\n  path: \"off\"\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.HistoryEnabled())
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "testbuild.yaml")

	require.NoError(t, Init(path, false))

	// Second init without force refuses to clobber.
	err := Init(path, false)
	require.Error(t, err)
	require.NoError(t, Init(path, true))

	// The generated example must load cleanly.
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "codelldb", cfg.Adapter.Command)
	assert.Equal(t, cargo.SelectFirst, cfg.Selection())
}
