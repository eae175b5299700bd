package adapter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommand(t *testing.T) {
	cmd := NewCommand("codelldb", "--port ${port}")
	assert.Equal(t, "codelldb", cmd.Executable)
	assert.Equal(t, []string{"--port", "${port}"}, cmd.Args)
}

func TestLaunchConfigJSON(t *testing.T) {
	cmd := NewCommand("codelldb", "--port ${port}")
	rendered, err := NewLaunchConfig(cmd, "/tmp/target/debug/deps/acquire-ab12").MarshalIndent()
	require.NoError(t, err)

	var decoded LaunchConfig
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))

	assert.Equal(t, "/tmp/target/debug/deps/acquire-ab12", decoded.Program)
	assert.Equal(t, "launch", decoded.Request)
	assert.Equal(t, "codelldb", decoded.Adapter.Executable)
	// The port placeholder must survive rendering for the editor to substitute.
	assert.Contains(t, rendered, "${port}")
}
