package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportCommand_ManagerialText(t *testing.T) {
	db := seedStore(t, sampleEvents())

	out, _, err := execute(t, "report", "--db", db, "--view", "managerial")
	require.NoError(t, err)

	assert.Contains(t, out, "view: managerial")
	assert.Contains(t, out, "request: req-cli")
	assert.Contains(t, out, "now: 2025-05-15T12:00:00Z")
	assert.Contains(t, out, "events: 3")
	assert.Contains(t, out, "revenue_month: 3000.00 vs 500.00")
	assert.Contains(t, out, "1. Lorato revenue=2000.00 sales=1")
	assert.Contains(t, out, "2. Amantle revenue=1500.00 sales=2")
}

func TestReportCommand_JSON(t *testing.T) {
	db := seedStore(t, sampleEvents())

	out, _, err := execute(t, "report", "--db", db, "--view", "sales", "--salesperson", "Amantle", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status    string `json:"status"`
		RequestID string `json:"request_id"`
		Data      struct {
			View        string   `json:"view"`
			Events      int      `json:"events"`
			Salespeople []string `json:"salespeople"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "req-cli", resp.RequestID)
	assert.Equal(t, "sales", resp.Data.View)
	assert.Equal(t, []string{"All", "Amantle", "Lorato"}, resp.Data.Salespeople)
}

func TestReportCommand_Filters(t *testing.T) {
	db := seedStore(t, sampleEvents())

	out, _, err := execute(t, "report", "--db", db, "--country", "Botswana", "--from", "2025-05-01", "--to", "2025-05-31")
	require.NoError(t, err)
	assert.Contains(t, out, "filter: 2025-05-01..2025-05-31|country=Botswana")
	assert.Contains(t, out, "events: 1")
}

func TestReportCommand_NowFlag(t *testing.T) {
	db := seedStore(t, sampleEvents())

	out, _, err := execute(t, "report", "--db", db, "--now", "2025-06-02")
	require.NoError(t, err)
	assert.Contains(t, out, "now: 2025-06-02T00:00:00Z")
	assert.Contains(t, out, "revenue_month: 0.00 vs 3000.00")
}

func TestReportCommand_Errors(t *testing.T) {
	db := seedStore(t, sampleEvents())
	badTargets := filepath.Join(t.TempDir(), "targets.yaml")
	require.NoError(t, os.WriteFile(badTargets, []byte("tables: {}\n"), 0644))
	partialTargets := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(partialTargets, []byte("tables:\n  visits:\n    target: 10\n"), 0644))

	tests := []struct {
		name     string
		args     []string
		exitCode int
		code     string
	}{
		{"missing database", []string{"report", "--db", filepath.Join(t.TempDir(), "none.db")}, ExitCommandError, ErrCodeNotFound},
		{"unknown view", []string{"report", "--db", db, "--view", "finance"}, ExitCommandError, ErrCodeInvalidInput},
		{"bad date", []string{"report", "--db", db, "--from", "05/01/2025"}, ExitCommandError, ErrCodeInvalidInput},
		{"bad now", []string{"report", "--db", db, "--now", "tomorrow"}, ExitCommandError, ErrCodeInvalidInput},
		{"invalid targets", []string{"report", "--db", db, "--targets", badTargets}, ExitCommandError, ErrCodeTargets},
		{"missing family", []string{"report", "--db", db, "--targets", partialTargets}, ExitFailure, ErrCodeReport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))
			assert.Contains(t, stderr, "Error ["+tt.code+"]")
		})
	}
}

func TestReportCommand_ConfigDatabase(t *testing.T) {
	db := seedStore(t, sampleEvents())
	cfgPath := filepath.Join(t.TempDir(), "kpidash.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database: "+db+"\ndashboard:\n  disable_cache: true\n"), 0644))

	out, _, err := execute(t, "--config", cfgPath, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "events: 3")
}
