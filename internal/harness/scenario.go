package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/kpidash/internal/dashboard"
	"github.com/roach88/kpidash/internal/event"
	"github.com/roach88/kpidash/internal/filter"
	"github.com/roach88/kpidash/internal/target"
)

// DefaultRequestID is the request ID used when a scenario has none.
const DefaultRequestID = "test-request-default"

// Scenario defines one dashboard contract test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Now pins the reference time of the request.
	Now time.Time `yaml:"now"`

	// View is the dashboard view to compute.
	View string `yaml:"view"`

	Salesperson string `yaml:"salesperson,omitempty"`

	// Targets is an optional target tables file. Relative paths resolve
	// against the scenario file's directory. Empty uses the built-in tables.
	Targets string `yaml:"targets,omitempty"`

	Filters Filters `yaml:"filters,omitempty"`

	// Events is the dataset. It may be empty.
	Events []event.Event `yaml:"events"`

	Assertions []Assertion `yaml:"assertions"`

	// RequestID fixes the request ID. Defaults to DefaultRequestID.
	RequestID string `yaml:"request_id,omitempty"`
}

// Filters is the YAML form of filter.Criteria.
type Filters struct {
	From       string            `yaml:"from,omitempty"`
	To         string            `yaml:"to,omitempty"`
	Dimensions map[string]string `yaml:"dimensions,omitempty"`
}

// Assertion validates one part of the computed report.
// Numeric fields are pointers so that zero can be asserted explicitly.
type Assertion struct {
	Type string `yaml:"type"`

	// kpi
	KPI          string   `yaml:"kpi,omitempty"`
	Status       string   `yaml:"status,omitempty"`
	Trend        string   `yaml:"trend,omitempty"`
	Comparison   *float64 `yaml:"comparison,omitempty"`
	DeltaPercent *float64 `yaml:"delta_percent,omitempty"`
	Defined      *bool    `yaml:"defined,omitempty"`

	// series
	Series string `yaml:"series,omitempty"`
	Month  string `yaml:"month,omitempty"`

	// breakdown
	Breakdown string   `yaml:"breakdown,omitempty"`
	Keys      []string `yaml:"keys,omitempty"`
	Rows      *int     `yaml:"rows,omitempty"`

	// motivation
	Tier string `yaml:"tier,omitempty"`

	// years
	Current  *int `yaml:"current,omitempty"`
	Previous *int `yaml:"previous,omitempty"`

	// leaderboard
	Names []string `yaml:"names,omitempty"`

	// Value is shared by kpi, series and breakdown.
	Value *float64 `yaml:"value,omitempty"`

	// Tolerance bounds numeric comparisons. Defaults to DefaultTolerance.
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

// Assertion type constants.
const (
	AssertKPI         = "kpi"
	AssertSeries      = "series"
	AssertBreakdown   = "breakdown"
	AssertMotivation  = "motivation"
	AssertYears       = "years"
	AssertLeaderboard = "leaderboard"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Targets != "" && !filepath.IsAbs(scenario.Targets) {
		scenario.Targets = filepath.Join(filepath.Dir(path), scenario.Targets)
	}
	return scenario, nil
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// Request builds the dashboard request the scenario describes.
func (s *Scenario) Request() (dashboard.Request, error) {
	view, err := dashboard.ParseView(s.View)
	if err != nil {
		return dashboard.Request{}, err
	}
	criteria, err := s.Filters.Criteria()
	if err != nil {
		return dashboard.Request{}, err
	}

	id := s.RequestID
	if id == "" {
		id = DefaultRequestID
	}
	return dashboard.Request{
		ID:          id,
		Now:         s.Now,
		View:        view,
		Criteria:    criteria,
		Salesperson: s.Salesperson,
	}, nil
}

// Dataset returns the scenario events as a dataset.
func (s *Scenario) Dataset() event.Dataset {
	return event.NewDataset(s.Events)
}

// TargetSet loads the scenario's target tables.
func (s *Scenario) TargetSet() (target.Set, error) {
	if s.Targets == "" {
		return target.DefaultSet(), nil
	}
	return target.LoadFile(s.Targets)
}

// Criteria converts the filters, validating dates and column names.
func (f Filters) Criteria() (filter.Criteria, error) {
	r, err := filter.ParseDateRange(f.From, f.To)
	if err != nil {
		return filter.Criteria{}, err
	}
	c := filter.Criteria{Range: r}
	if len(f.Dimensions) > 0 {
		c.Dimensions = make(map[event.Column]string, len(f.Dimensions))
		for name, v := range f.Dimensions {
			col, err := event.ParseColumn(name)
			if err != nil {
				return filter.Criteria{}, err
			}
			c.Dimensions[col] = v
		}
	}
	return c, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Now.IsZero() {
		return fmt.Errorf("now is required")
	}
	if _, err := dashboard.ParseView(s.View); err != nil {
		return fmt.Errorf("view: %w", err)
	}
	if _, err := s.Filters.Criteria(); err != nil {
		return fmt.Errorf("filters: %w", err)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, e := range s.Events {
		if e.ID == "" {
			return fmt.Errorf("events[%d]: id is required", i)
		}
		if e.Timestamp.IsZero() {
			return fmt.Errorf("events[%d]: timestamp is required", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertKPI:
		if a.KPI == "" {
			return fmt.Errorf("assertions[%d]: kpi is required for kpi", index)
		}
	case AssertSeries:
		if a.Series == "" || a.Month == "" {
			return fmt.Errorf("assertions[%d]: series and month are required for series", index)
		}
		if monthIndex(a.Month) < 0 {
			return fmt.Errorf("assertions[%d]: unknown month %q", index, a.Month)
		}
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for series", index)
		}
	case AssertBreakdown:
		if a.Breakdown == "" || len(a.Keys) == 0 {
			return fmt.Errorf("assertions[%d]: breakdown and keys are required for breakdown", index)
		}
		if a.Value == nil && a.Rows == nil {
			return fmt.Errorf("assertions[%d]: value or rows is required for breakdown", index)
		}
	case AssertMotivation:
		if a.Tier == "" {
			return fmt.Errorf("assertions[%d]: tier is required for motivation", index)
		}
	case AssertYears:
		if a.Current == nil && a.Previous == nil {
			return fmt.Errorf("assertions[%d]: current or previous is required for years", index)
		}
	case AssertLeaderboard:
		if a.Names == nil {
			return fmt.Errorf("assertions[%d]: names is required for leaderboard", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.Tolerance < 0 {
		return fmt.Errorf("assertions[%d]: tolerance must be non-negative", index)
	}
	return nil
}
