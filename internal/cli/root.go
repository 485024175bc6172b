package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/kpidash/internal/config"
	"github.com/roach88/kpidash/internal/dashboard"
	"github.com/roach88/kpidash/internal/logging"
	"github.com/roach88/kpidash/internal/predict"
	"github.com/roach88/kpidash/internal/window"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // path to kpidash.yaml

	// Clock overrides the wall clock (for testing).
	// If nil, defaults to window.SystemClock.
	Clock window.Clock

	// IDs overrides the request ID generator (for testing).
	// If nil, defaults to dashboard.UUIDv7Generator.
	IDs dashboard.IDGenerator

	// Predictor overrides the configured model command (for testing).
	Predictor predict.Predictor
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the kpidash CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kpidash",
		Short: "kpidash - sales and traffic KPI reports",
		Long: `Compute time-windowed sales, traffic and advertisement KPIs from an event
store and classify them against per-salesperson targets.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to config file")

	// Add subcommands
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewTargetsCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewPredictCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// setup loads configuration and builds the logger. Logs always go to
// errOut (or the configured file) so JSON on stdout stays parseable.
func (o *RootOptions) setup(errOut io.Writer) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadFromEnv(o.Config)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.Log, errOut)
	if o.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return cfg, logger, nil
}

func (o *RootOptions) clock() window.Clock {
	if o.Clock != nil {
		return o.Clock
	}
	return window.SystemClock{}
}

func (o *RootOptions) predictor(cfg *config.Config) predict.Predictor {
	if o.Predictor != nil {
		return o.Predictor
	}
	return predict.NewCommand(cfg.Model.Command)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
