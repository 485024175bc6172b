package harness

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/roach88/kpidash/internal/aggregate"
	"github.com/roach88/kpidash/internal/dashboard"
	"github.com/roach88/kpidash/internal/logging"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Report is the computed view.
	Report *dashboard.Report `json:"report"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Options tunes scenario execution.
type Options struct {
	// Logger receives engine logs. Nil discards them.
	Logger *logrus.Logger

	// RollingWindow overrides the team-average window when positive.
	RollingWindow int
}

// Run executes a scenario with default options.
//
// An error means the scenario could not be executed (bad targets, missing
// target family). Assertion failures are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	return RunWith(scenario, Options{})
}

// RunWith executes a scenario.
//
// Each scenario gets a fresh engine and aggregate cache. The report is
// computed twice, once cold and once from the cache, and the two must agree.
func RunWith(scenario *Scenario, opts Options) (*Result, error) {
	targets, err := scenario.TargetSet()
	if err != nil {
		return nil, fmt.Errorf("failed to load targets: %w", err)
	}
	req, err := scenario.Request()
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	engineOpts := []dashboard.Option{
		dashboard.WithCache(aggregate.NewCache()),
		dashboard.WithLogger(logger),
	}
	if opts.RollingWindow > 0 {
		engineOpts = append(engineOpts, dashboard.WithRollingWindow(opts.RollingWindow))
	}
	eng := dashboard.New(targets, engineOpts...)

	ds := scenario.Dataset()
	report, err := eng.Run(ds, req)
	if err != nil {
		return nil, fmt.Errorf("failed to compute %s view: %w", req.View, err)
	}

	result := NewResult()
	result.Report = report

	cached, err := eng.Run(ds, req)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute %s view: %w", req.View, err)
	}
	if !sameReport(report, cached) {
		result.AddError("report changed when recomputed from the aggregate cache")
	}

	for _, msg := range EvaluateAssertions(report, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func sameReport(a, b *dashboard.Report) bool {
	x, err := Snapshot(a)
	if err != nil {
		return false
	}
	y, err := Snapshot(b)
	if err != nil {
		return false
	}
	return string(x) == string(y)
}
