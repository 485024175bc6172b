package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/kpidash/internal/dashboard"
	"github.com/roach88/kpidash/internal/series"
)

// DefaultTolerance bounds numeric comparisons when an assertion sets none.
const DefaultTolerance = 1e-9

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Subject  string // KPI, series or breakdown name
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Subject != "" {
		fmt.Fprintf(&buf, " %s", e.Subject)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against the report and returns
// the failure messages in assertion order.
func EvaluateAssertions(report *dashboard.Report, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(report, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(r *dashboard.Report, a Assertion) error {
	switch a.Type {
	case AssertKPI:
		return assertKPI(r, a)
	case AssertSeries:
		return assertSeries(r, a)
	case AssertBreakdown:
		return assertBreakdown(r, a)
	case AssertMotivation:
		return assertMotivation(r, a)
	case AssertYears:
		return assertYears(r, a)
	case AssertLeaderboard:
		return assertLeaderboard(r, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertKPI(r *dashboard.Report, a Assertion) error {
	k, ok := r.KPI(a.KPI)
	if !ok {
		return &AssertionError{Type: a.Type, Subject: a.KPI, Expected: "KPI present", Actual: "not in report"}
	}
	fail := func(field string, want, got any) error {
		return &AssertionError{
			Type:     a.Type,
			Subject:  a.KPI,
			Expected: fmt.Sprintf("%s = %v", field, want),
			Actual:   fmt.Sprintf("%s = %v", field, got),
		}
	}

	if a.Defined != nil && *a.Defined != k.Defined {
		return fail("defined", *a.Defined, k.Defined)
	}
	if a.Status != "" && a.Status != string(k.Status) {
		return fail("status", a.Status, k.Status)
	}
	if a.Trend != "" && a.Trend != string(k.Trend) {
		return fail("trend", a.Trend, k.Trend)
	}
	if a.Value != nil && !near(*a.Value, k.Value, a.Tolerance) {
		return fail("value", *a.Value, k.Value)
	}
	if a.Comparison != nil && !near(*a.Comparison, k.Comparison, a.Tolerance) {
		return fail("comparison", *a.Comparison, k.Comparison)
	}
	if a.DeltaPercent != nil && !near(*a.DeltaPercent, k.DeltaPercent, a.Tolerance) {
		return fail("delta_percent", *a.DeltaPercent, k.DeltaPercent)
	}
	return nil
}

func assertSeries(r *dashboard.Report, a Assertion) error {
	s, ok := r.Series[a.Series]
	if !ok {
		return &AssertionError{Type: a.Type, Subject: a.Series, Expected: "series present", Actual: "not in report"}
	}
	i := monthIndex(a.Month)
	if i < 0 || i >= len(s) {
		return &AssertionError{Type: a.Type, Subject: a.Series, Expected: "month " + a.Month, Actual: "no such entry"}
	}
	if got := s[i].Value; !near(*a.Value, got, a.Tolerance) {
		return &AssertionError{
			Type:     a.Type,
			Subject:  a.Series,
			Expected: fmt.Sprintf("%s = %v", a.Month, *a.Value),
			Actual:   fmt.Sprintf("%s = %v", a.Month, got),
		}
	}
	return nil
}

func assertBreakdown(r *dashboard.Report, a Assertion) error {
	rows, ok := r.Breakdowns[a.Breakdown]
	if !ok {
		return &AssertionError{Type: a.Type, Subject: a.Breakdown, Expected: "breakdown present", Actual: "not in report"}
	}
	keys := strings.Join(a.Keys, ",")
	for _, row := range rows {
		if strings.Join(row.Keys, ",") != keys {
			continue
		}
		if a.Value != nil && !near(*a.Value, row.Value.V, a.Tolerance) {
			return &AssertionError{
				Type:     a.Type,
				Subject:  a.Breakdown,
				Expected: fmt.Sprintf("[%s] value = %v", keys, *a.Value),
				Actual:   fmt.Sprintf("[%s] value = %v", keys, row.Value.V),
			}
		}
		if a.Rows != nil && *a.Rows != row.Rows {
			return &AssertionError{
				Type:     a.Type,
				Subject:  a.Breakdown,
				Expected: fmt.Sprintf("[%s] rows = %d", keys, *a.Rows),
				Actual:   fmt.Sprintf("[%s] rows = %d", keys, row.Rows),
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Subject:  a.Breakdown,
		Expected: fmt.Sprintf("group [%s]", keys),
		Actual:   "group not found",
	}
}

func assertMotivation(r *dashboard.Report, a Assertion) error {
	if r.Motivation == nil {
		return &AssertionError{Type: a.Type, Expected: "tier " + a.Tier, Actual: "no motivation tile"}
	}
	if string(r.Motivation.Tier) != a.Tier {
		return &AssertionError{Type: a.Type, Expected: "tier " + a.Tier, Actual: "tier " + string(r.Motivation.Tier)}
	}
	return nil
}

func assertYears(r *dashboard.Report, a Assertion) error {
	if a.Current != nil && *a.Current != r.Years.Current {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("current = %d", *a.Current),
			Actual:   fmt.Sprintf("current = %d", r.Years.Current),
		}
	}
	if a.Previous != nil && *a.Previous != r.Years.Previous {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("previous = %d", *a.Previous),
			Actual:   fmt.Sprintf("previous = %d", r.Years.Previous),
		}
	}
	return nil
}

func assertLeaderboard(r *dashboard.Report, a Assertion) error {
	got := make([]string, len(r.Leaderboard))
	for i, l := range r.Leaderboard {
		got[i] = l.Name
	}
	if strings.Join(got, ",") != strings.Join(a.Names, ",") || len(got) != len(a.Names) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%v", a.Names),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

// near compares with the given tolerance, or DefaultTolerance when zero.
func near(want, got, tolerance float64) bool {
	if tolerance == 0 {
		tolerance = DefaultTolerance
	}
	return math.Abs(want-got) <= tolerance
}

// monthIndex maps a month label to its position on the series axis.
func monthIndex(label string) int {
	for i, l := range series.MonthLabels {
		if strings.EqualFold(l, label) {
			return i
		}
	}
	return -1
}
