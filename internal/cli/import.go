package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/kpidash/internal/event"
	"github.com/roach88/kpidash/internal/logging"
	"github.com/roach88/kpidash/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
}

// ImportSummary reports the outcome of an import.
type ImportSummary struct {
	File     string `json:"file"`
	Database string `json:"database"`
	Imported int    `json:"imported"`
	Total    int    `json:"total"`
}

// WriteText prints a one-line summary.
func (s ImportSummary) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Imported %d events from %s into %s (%d total)\n", s.Imported, s.File, s.Database, s.Total)
	return err
}

// eventsDocument is the shape of an events file.
type eventsDocument struct {
	Events []event.Event `json:"events" yaml:"events"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <events-file>",
		Short: "Load events into the event store",
		Long: `Load events from a YAML or JSON file into the SQLite event store.

The file holds a top-level "events" list. Files ending in .gz are
decompressed first. Events are upserted by id in one transaction; a file
with any invalid event writes nothing.

Exit codes:
  0 - Events imported
  2 - Command error (unreadable or malformed file, store error)

Examples:
  kpidash import ./events.yaml --db ./events.db
  kpidash import ./events.json.gz`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite event store (default from config)")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	cfg, logger, err := opts.setup(cmd.ErrOrStderr())
	if err != nil {
		return out.Fail(ErrCodeConfig, ExitCommandError, "failed to load config", err)
	}
	defer logging.Close(logger)

	events, err := readEventsFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out.Fail(ErrCodeNotFound, ExitCommandError, fmt.Sprintf("events file not found: %s", path), nil)
		}
		return out.Fail(ErrCodeInvalidInput, ExitCommandError, "failed to read events", err)
	}

	dbPath := firstNonEmpty(opts.Database, cfg.Database)
	st, err := store.Open(dbPath)
	if err != nil {
		return out.Fail(ErrCodeStore, ExitCommandError, "failed to open store", err)
	}
	defer st.Close()

	ctx := commandContext(cmd)
	if err := st.WriteEvents(ctx, events); err != nil {
		if errors.Is(err, store.ErrInvalidEvent) {
			return out.Fail(ErrCodeInvalidInput, ExitCommandError, "invalid event", err)
		}
		return out.Fail(ErrCodeStore, ExitCommandError, "failed to write events", err)
	}
	total, err := st.Count(ctx)
	if err != nil {
		return out.Fail(ErrCodeStore, ExitCommandError, "failed to count events", err)
	}

	logger.WithFields(logrus.Fields{
		"file":     path,
		"database": dbPath,
		"imported": len(events),
		"total":    total,
	}).Info("events imported")

	return out.Success(ImportSummary{
		File:     path,
		Database: dbPath,
		Imported: len(events),
		Total:    total,
	})
}

// readEventsFile decodes an events file.
func readEventsFile(path string) ([]event.Event, error) {
	var doc eventsDocument
	if err := decodeFile(path, &doc); err != nil {
		return nil, err
	}
	return doc.Events, nil
}
