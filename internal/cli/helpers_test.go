package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/kpidash/internal/config"
	"github.com/roach88/kpidash/internal/event"
	"github.com/roach88/kpidash/internal/store"
	"github.com/roach88/kpidash/internal/testutil"
)

var testNow = time.Date(2025, 5, 15, 12, 0, 0, 0, time.UTC)

// isolateEnv clears every KPIDASH_* override so host settings do not leak in.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvDatabase, config.EnvTargets, config.EnvLogLevel,
		config.EnvLogFormat, config.EnvLogFile, config.EnvRollingWindow,
		config.EnvModelCommand,
		config.EnvModelReport,
	} {
		t.Setenv(key, "")
	}
}

// execute runs the root command with a pinned clock and request ID.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeWith(t, &RootOptions{}, args...)
}

// executeWith is execute with caller-supplied overrides.
func executeWith(t *testing.T, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()
	isolateEnv(t)

	if opts.Clock == nil {
		opts.Clock = testutil.NewFixedClock(testNow)
	}
	if opts.IDs == nil {
		opts.IDs = testutil.NewFixedIDGenerator("req-cli")
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := newRootCommand(opts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func sampleEvents() []event.Event {
	return []event.Event{
		{ID: "e1", Timestamp: day(2025, time.May, 3), EntityID: "Amantle", Region: "Botswana", SaleMade: "Yes", TransactionAmount: 1000},
		{ID: "e2", Timestamp: day(2025, time.April, 20), EntityID: "Amantle", Region: "Botswana", SaleMade: "yes", TransactionAmount: 500},
		{ID: "e3", Timestamp: day(2025, time.May, 10), EntityID: "Lorato", Region: "Namibia", SaleMade: "YES", TransactionAmount: 2000},
	}
}

// seedStore writes events to a new store and returns its path.
func seedStore(t *testing.T, events []event.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.WriteEvents(context.Background(), events))
	require.NoError(t, st.Close())
	return path
}
