// Package adapter assembles the companion debug-adapter launch command and
// the launch configuration the editor's debugging plugin consumes. It does
// not spawn the adapter or manage a session; port substitution is performed
// by the host editor.
package adapter

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Command describes how the editor should start the debug adapter process.
type Command struct {
	Executable string   `json:"executable"`
	Args       []string `json:"args"`
}

// LaunchConfig is the session description handed to the debugging plugin.
// Program is the previously discovered test binary path.
type LaunchConfig struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Request string   `json:"request"`
	Program string   `json:"program"`
	Adapter Command  `json:"adapter"`
	Args    []string `json:"args,omitempty"`
}

// NewCommand builds the adapter command from the configured executable and
// port argument template. The template is split on whitespace; the port
// placeholder inside it is left for the editor to substitute.
func NewCommand(executable, portArg string) Command {
	return Command{
		Executable: executable,
		Args:       strings.Fields(portArg),
	}
}

// NewLaunchConfig pairs an adapter command with a program path.
func NewLaunchConfig(cmd Command, program string) LaunchConfig {
	return LaunchConfig{
		Name:    "Debug test binary",
		Type:    "lldb",
		Request: "launch",
		Program: program,
		Adapter: cmd,
	}
}

// MarshalIndent renders the launch configuration as indented JSON for
// printing or pasting into editor configuration.
func (lc LaunchConfig) MarshalIndent() (string, error) {
	data, err := json.MarshalIndent(lc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal launch config: %w", err)
	}
	return string(data), nil
}
