package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/testbuild/internal/cargo"
	"git.home.luguber.info/inful/testbuild/internal/config"
	"git.home.luguber.info/inful/testbuild/internal/history"
)

// stubTool writes an executable shell script standing in for cargo.
func stubTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "cargo-stub")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

func testConfig(t *testing.T, bin string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Build:    config.BuildConfig{Binary: bin},
		Extract:  config.ExtractConfig{Marker: cargo.DefaultMarker, Select: "first"},
		Settings: config.SettingsConfig{Dir: filepath.Join(dir, ".vim"), File: "test_binary_path"},
	}
}

func TestRun_StructuredOutput(t *testing.T) {
	bin := stubTool(t, `echo '{"profile":{"test":true},"filenames":["/tmp/target/debug/deps/game-ab12"]}'`)
	cfg := testConfig(t, bin)

	pipe := New(cfg, nil)
	out, err := pipe.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, out.ExitCode)
	assert.True(t, out.Found)
	assert.Equal(t, "/tmp/target/debug/deps/game-ab12", out.BinaryPath)

	stored, found, err := pipe.StateFile().Read()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "/tmp/target/debug/deps/game-ab12", stored)
}

func TestRun_PlainLogFallback(t *testing.T) {
	bin := stubTool(t, `echo '  Executable unittests src/lib.rs ("/tmp/deps/game-ff01")' >&2`)
	cfg := testConfig(t, bin)

	out, err := New(cfg, nil).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Found)
	assert.Equal(t, "/tmp/deps/game-ff01", out.BinaryPath)
}

func TestRun_BuildFailureKeepsPreviousPath(t *testing.T) {
	bin := stubTool(t, "echo 'error[E0308]: mismatched types' >&2\nexit 101\n")
	cfg := testConfig(t, bin)

	pipe := New(cfg, nil)
	require.NoError(t, pipe.StateFile().Write("/tmp/previous"))

	out, err := pipe.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 101, out.ExitCode)
	assert.False(t, out.Found)
	assert.Contains(t, out.Output, "mismatched types")

	stored, found, err := pipe.StateFile().Read()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "/tmp/previous", stored, "failed run must not clobber the settings file")
}

func TestRun_NoMatchIsNotAnError(t *testing.T) {
	bin := stubTool(t, "echo '    Finished test profile'\n")
	cfg := testConfig(t, bin)

	out, err := New(cfg, nil).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, out.Found)
	assert.Empty(t, out.BinaryPath)
}

func TestRun_MalformedRecordPropagates(t *testing.T) {
	bin := stubTool(t, `echo '{"profile":{"test":'`)
	cfg := testConfig(t, bin)

	_, err := New(cfg, nil).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, cargo.ErrMalformedRecord))
}

func TestRun_ScratchLogRemovedAfterExtraction(t *testing.T) {
	scratch := filepath.Join(t.TempDir(), "build.log")
	bin := stubTool(t, `echo '{"profile":{"test":true},"filenames":["/tmp/t1"]}'`)
	cfg := testConfig(t, bin)
	cfg.Build.ScratchLog = scratch

	out, err := New(cfg, nil).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Found)

	_, statErr := os.Stat(scratch)
	assert.True(t, os.IsNotExist(statErr), "scratch log must be removed on all exit paths")
}

func TestRun_RecordsHistory(t *testing.T) {
	bin := stubTool(t, `echo '{"profile":{"test":true},"filenames":["/tmp/t1"]}'`)
	cfg := testConfig(t, bin)

	store, err := history.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	out, err := New(cfg, store).Run(context.Background())
	require.NoError(t, err)

	runs, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, out.RunID, runs[0].ID)
	assert.Equal(t, "/tmp/t1", runs[0].BinaryPath)
	assert.Equal(t, 0, runs[0].ExitCode)
}
