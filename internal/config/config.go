// Package config loads testbuild's YAML configuration. The config file is
// optional; every field has a working default so the tool runs unconfigured
// in a cargo project root.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/testbuild/internal/cargo"
)

// DefaultPath is the conventional config file location.
const DefaultPath = "testbuild.yaml"

// Config represents the application configuration
type Config struct {
	Build    BuildConfig    `yaml:"build"`
	Extract  ExtractConfig  `yaml:"extract"`
	Settings SettingsConfig `yaml:"settings"`
	History  HistoryConfig  `yaml:"history"`
	Watch    WatchConfig    `yaml:"watch"`
	Adapter  AdapterConfig  `yaml:"adapter"`
}

// BuildConfig controls the cargo invocation.
type BuildConfig struct {
	// Dir is the project root the build runs in. Empty means cwd.
	Dir string `yaml:"dir,omitempty"`
	// Binary overrides the tool name looked up on PATH.
	Binary string `yaml:"binary,omitempty"`
	// ExtraArgs are appended after the fixed test --no-run command line.
	ExtraArgs []string `yaml:"extra_args,omitempty"`
	// ScratchLog tees combined build output to this file. Concurrent runs
	// sharing one config race on it; runs are expected to be sequential.
	ScratchLog string `yaml:"scratch_log,omitempty"`
}

// ExtractConfig controls binary path extraction from build output.
type ExtractConfig struct {
	// Marker is the substring recognizing executable announcements in
	// plain-text output.
	Marker string `yaml:"marker,omitempty"`
	// Select picks among multiple candidates: "first" or "last".
	Select string `yaml:"select,omitempty"`
}

// SettingsConfig controls where the extracted path is persisted for the
// editor's debugging plugin.
type SettingsConfig struct {
	Dir  string `yaml:"dir,omitempty"`
	File string `yaml:"file,omitempty"`
}

// HistoryConfig controls the sqlite run history.
type HistoryConfig struct {
	// Path of the history database. "off" disables history recording.
	Path string `yaml:"path,omitempty"`
	// Limit is the default number of runs shown by the history command.
	Limit int `yaml:"limit,omitempty"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	// Dirs are the directories monitored for source changes.
	Dirs []string `yaml:"dirs,omitempty"`
	// DebounceSeconds collapses rapid change bursts into one rebuild.
	DebounceSeconds int `yaml:"debounce_seconds,omitempty"`
	// Every triggers an unconditional rebuild on a fixed interval when
	// positive (seconds). Zero disables scheduled rebuilds.
	Every int `yaml:"every,omitempty"`
	// MetricsAddr exposes Prometheus metrics when non-empty, e.g. ":9471".
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

// AdapterConfig describes the companion debug adapter process.
type AdapterConfig struct {
	// Command is the adapter executable name.
	Command string `yaml:"command,omitempty"`
	// PortArg is the argument template carrying the port placeholder the
	// editor substitutes at launch time.
	PortArg string `yaml:"port_arg,omitempty"`
}

// Load loads configuration from the specified file. A missing file at the
// default path is not an error; defaults apply.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	loadEnvFiles()

	cfg := &Config{}
	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		if configPath != DefaultPath {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		// Expand environment variables in the YAML content. Unset variables
		// are kept verbatim so editor placeholders like ${port} survive.
		expanded := os.Expand(string(data), func(key string) string {
			if v, ok := os.LookupEnv(key); ok {
				return v
			}
			return "${" + key + "}"
		})
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills unset fields and validates enumerated values.
func applyDefaults(cfg *Config) error {
	if cfg.Build.Binary == "" {
		cfg.Build.Binary = "cargo"
	}
	if cfg.Extract.Marker == "" {
		cfg.Extract.Marker = cargo.DefaultMarker
	}
	if cfg.Extract.Select == "" {
		cfg.Extract.Select = string(cargo.SelectFirst)
	}
	if cargo.NormalizeSelection(cfg.Extract.Select) == "" {
		return fmt.Errorf("invalid extract.select %q (want first or last)", cfg.Extract.Select)
	}
	if cfg.Settings.Dir == "" {
		cfg.Settings.Dir = ".vim"
	}
	if cfg.Settings.File == "" {
		cfg.Settings.File = "test_binary_path"
	}
	if cfg.History.Path == "" {
		cfg.History.Path = filepath.Join(cfg.Settings.Dir, "testbuild_history.db")
	}
	if cfg.History.Limit <= 0 {
		cfg.History.Limit = 20
	}
	if len(cfg.Watch.Dirs) == 0 {
		cfg.Watch.Dirs = []string{"src"}
	}
	if cfg.Watch.DebounceSeconds <= 0 {
		cfg.Watch.DebounceSeconds = 2
	}
	if cfg.Watch.Every < 0 {
		cfg.Watch.Every = 0
	}
	if cfg.Adapter.Command == "" {
		cfg.Adapter.Command = "codelldb"
	}
	if cfg.Adapter.PortArg == "" {
		cfg.Adapter.PortArg = "--port ${port}"
	}
	return nil
}

// Selection returns the configured candidate selection strategy.
func (c *Config) Selection() cargo.Selection {
	return cargo.NormalizeSelection(c.Extract.Select)
}

// SettingsFilePath is the full path of the persisted binary path file.
func (c *Config) SettingsFilePath() string {
	return filepath.Join(c.Settings.Dir, c.Settings.File)
}

// HistoryEnabled reports whether run history recording is on.
func (c *Config) HistoryEnabled() bool {
	return c.History.Path != "off"
}
