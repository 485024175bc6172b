package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/kpidash/internal/aggregate"
	"github.com/roach88/kpidash/internal/dashboard"
	"github.com/roach88/kpidash/internal/event"
	"github.com/roach88/kpidash/internal/filter"
	"github.com/roach88/kpidash/internal/logging"
	"github.com/roach88/kpidash/internal/store"
	"github.com/roach88/kpidash/internal/target"
	"github.com/roach88/kpidash/internal/window"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Database string
	Targets  string
	View     string

	From, To string

	Country     string
	Device      string
	Campaign    string
	Referrer    string
	Salesperson string

	User string
	Now  string
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute a dashboard view",
		Long: `Compute one dashboard view over the event store.

Views:
  managerial  revenue this month, year and quarter, leaderboard
  sales       per-salesperson targets, team average, motivation
  traffic     visits, product-page visits and sales vs last year
  ads         time on page, demo requests, demo-to-sale funnel

Exit codes:
  0 - Report computed
  1 - Report could not be computed (missing target table)
  2 - Command error (invalid flags, database not found, etc.)

Examples:
  kpidash report --db ./events.db --view managerial
  kpidash report --db ./events.db --view sales --salesperson Amantle
  kpidash report --view traffic --from 2025-01-01 --to 2025-06-30 --country Botswana
  kpidash report --view ads --now 2025-05-15 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite event store (default from config)")
	cmd.Flags().StringVar(&opts.Targets, "targets", "", "target tables file (default built-in)")
	cmd.Flags().StringVar(&opts.View, "view", string(dashboard.Managerial), "view: managerial|sales|traffic|ads")
	cmd.Flags().StringVar(&opts.From, "from", "", "first day, YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&opts.To, "to", "", "last day, YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&opts.Country, "country", filter.All, "country filter")
	cmd.Flags().StringVar(&opts.Device, "device", filter.All, "device type filter")
	cmd.Flags().StringVar(&opts.Campaign, "campaign", filter.All, "campaign type filter")
	cmd.Flags().StringVar(&opts.Referrer, "referrer", filter.All, "referrer type filter")
	cmd.Flags().StringVar(&opts.Salesperson, "salesperson", filter.All, "salesperson for the sales view")
	cmd.Flags().StringVar(&opts.User, "user", "", "user name recorded in logs")
	cmd.Flags().StringVar(&opts.Now, "now", "", "reference time, RFC3339 or YYYY-MM-DD (default current time)")

	return cmd
}

func runReport(opts *ReportOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	cfg, logger, err := opts.setup(cmd.ErrOrStderr())
	if err != nil {
		return out.Fail(ErrCodeConfig, ExitCommandError, "failed to load config", err)
	}
	defer logging.Close(logger)

	view, err := dashboard.ParseView(opts.View)
	if err != nil {
		return out.Fail(ErrCodeInvalidInput, ExitCommandError, "invalid view", err)
	}
	criteria, err := opts.criteria()
	if err != nil {
		return out.Fail(ErrCodeInvalidInput, ExitCommandError, "invalid filters", err)
	}
	clock, err := opts.referenceClock()
	if err != nil {
		return out.Fail(ErrCodeInvalidInput, ExitCommandError, "invalid --now", err)
	}

	targets, err := loadTargets(firstNonEmpty(opts.Targets, cfg.Targets))
	if err != nil {
		return out.Fail(ErrCodeTargets, ExitCommandError, "failed to load targets", err)
	}

	dbPath := firstNonEmpty(opts.Database, cfg.Database)
	ds, err := readDataset(commandContext(cmd), dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return out.Fail(ErrCodeNotFound, ExitCommandError, fmt.Sprintf("database not found: %s", dbPath), nil)
		}
		return out.Fail(ErrCodeStore, ExitCommandError, "failed to read events", err)
	}
	out.VerboseLog("Loaded %d events from %s", ds.Len(), dbPath)

	engineOpts := []dashboard.Option{
		dashboard.WithLogger(logger),
		dashboard.WithRollingWindow(cfg.Dashboard.RollingWindow),
	}
	if !cfg.Dashboard.DisableCache {
		engineOpts = append(engineOpts, dashboard.WithCache(aggregate.NewCache()))
	}

	req := dashboard.NewRequest(clock, opts.IDs, view)
	req.Criteria = criteria
	req.Salesperson = opts.Salesperson
	req.User = opts.User

	rep, err := dashboard.New(targets, engineOpts...).Run(ds, req)
	if err != nil {
		return out.Fail(ErrCodeReport, ExitFailure, "failed to compute report", err)
	}
	return out.SuccessWithID(rep, rep.RequestID)
}

// criteria builds the filter selection from flags.
func (o *ReportOptions) criteria() (filter.Criteria, error) {
	r, err := filter.ParseDateRange(o.From, o.To)
	if err != nil {
		return filter.Criteria{}, err
	}
	dims := map[event.Column]string{}
	for col, v := range map[event.Column]string{
		event.ColumnCountry:      o.Country,
		event.ColumnDeviceType:   o.Device,
		event.ColumnCampaignType: o.Campaign,
		event.ColumnReferrerType: o.Referrer,
	} {
		if v != "" && v != filter.All {
			dims[col] = v
		}
	}
	return filter.Criteria{Range: r, Dimensions: dims}, nil
}

// referenceClock pins the clock to --now when given.
func (o *ReportOptions) referenceClock() (window.Clock, error) {
	if o.Now == "" {
		return o.clock(), nil
	}
	t, err := time.Parse(time.RFC3339, o.Now)
	if err != nil {
		t, err = time.Parse(filter.DateLayout, o.Now)
		if err != nil {
			return nil, fmt.Errorf("%q is neither RFC3339 nor YYYY-MM-DD", o.Now)
		}
	}
	return window.ClockFunc(func() time.Time { return t }), nil
}

// readDataset loads every event of the store at path. A missing file is
// reported with an os.IsNotExist error rather than created.
func readDataset(ctx context.Context, path string) (event.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return event.Dataset{}, err
	}
	st, err := store.OpenReadOnly(path)
	if err != nil {
		return event.Dataset{}, err
	}
	defer st.Close()
	return st.ReadEvents(ctx)
}

// loadTargets reads a target tables file, or the built-in tables for "".
func loadTargets(path string) (target.Set, error) {
	if path == "" {
		return target.DefaultSet(), nil
	}
	return target.LoadFile(path)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute (tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
