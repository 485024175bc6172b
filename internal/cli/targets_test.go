package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetsCommand_BuiltIn(t *testing.T) {
	out, _, err := execute(t, "targets")
	require.NoError(t, err)

	assert.Contains(t, out, "targets: built-in")
	assert.Contains(t, out, "sales_count: default 30000.00..70000.00, 8 entries")
	assert.Contains(t, out, "  Amantle 4000.00..7000.00")
	assert.Contains(t, out, "  Bostile 4000.00..8500.00")
	assert.Contains(t, out, "  warning: lower above upper for Boemo")
	assert.Contains(t, out, "visits: default 80000.00..200000.00, 0 entries")
}

func TestTargetsCommand_FileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tables:\n  visits:\n    target: 500\n    tolerance: 0.5\n"), 0644))

	out, _, err := execute(t, "targets", "--targets", path, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   TargetsSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, path, resp.Data.Source)
	require.Len(t, resp.Data.Tables, 1)
	assert.Equal(t, "visits", resp.Data.Tables[0].Name)
	assert.Equal(t, 250.0, resp.Data.Tables[0].Default.Lower)
	assert.Empty(t, resp.Data.Tables[0].Degenerate)
}

func TestTargetsCommand_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tables:\n  visits:\n    target: -1\n"), 0644))

	_, stderr, err := execute(t, "targets", "--targets", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "Error [E003]")
}
