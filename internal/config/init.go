package config

import (
	"fmt"
	"os"
)

// exampleConfig documents every key with its default. Kept as literal text
// so comments survive into the generated file.
const exampleConfig = `# testbuild configuration
build:
  # Project root the cargo build runs in (default: current directory).
  dir: ""
  # Extra arguments appended to "cargo test --no-run --message-format=json".
  extra_args: []
  # Tee combined build output to this file. Removed after extraction.
  scratch_log: ""

extract:
  # Marker word recognizing executable announcements in plain-text output.
  marker: Executable
  # Tie-break when several candidates match: first or last.
  select: first

settings:
  # Per-editor settings directory the binary path is written into.
  dir: .vim
  file: test_binary_path

history:
  # Run history database. Set to "off" to disable.
  path: .vim/testbuild_history.db
  limit: 20

watch:
  dirs: [src]
  debounce_seconds: 2
  # Rebuild unconditionally every N seconds (0 disables).
  every: 0
  # Expose Prometheus metrics in watch mode, e.g. ":9471".
  metrics_addr: ""

adapter:
  command: codelldb
  # The editor substitutes the port placeholder when starting a session.
  port_arg: --port ${port}
`

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
