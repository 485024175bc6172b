// Package target resolves per-entity KPI thresholds.
//
// A Table maps an entity identifier (salesperson name) to a (lower, upper)
// threshold pair and carries one default pair for entities it does not list.
// Lookup is exact: no case folding, trimming or fuzzy matching. An entity
// spelled differently from its table key silently receives the default pair.
//
// Pairs are expected to satisfy lower <= upper but this is not enforced.
// An inverted pair collapses the "approaching" tier; Degenerate reports such
// entries so they can be surfaced in logs without being reordered.
package target

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownTable is returned when a KPI family has no configured table.
var ErrUnknownTable = errors.New("unknown target table")

// KPI families with configured tables.
const (
	FamilySalesCount       = "sales_count"
	FamilyAnnualRevenue    = "annual_revenue"
	FamilyQuarterlyRevenue = "quarterly_revenue"
	FamilyYearlyGoal       = "yearly_goal"
	FamilyYTDRevenue       = "ytd_revenue"
	FamilyQTDRevenue       = "qtd_revenue"
	FamilyVisits           = "visits"
	FamilyProductVisits    = "product_visits"
	FamilySales            = "sales"
	FamilyAvgTimeOnPage    = "avg_time_on_page"
	FamilyDemoRequests     = "demo_requests"
)

// Pair is a (lower, upper) threshold pair.
type Pair struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Degenerate reports whether Lower is above Upper.
func (p Pair) Degenerate() bool {
	return p.Lower > p.Upper
}

// FromTarget builds the pair for a single target reached at full value and
// approached from target*tolerance.
func FromTarget(target, tolerance float64) Pair {
	return Pair{Lower: target * tolerance, Upper: target}
}

// Table is one KPI family's threshold mapping.
type Table struct {
	Name    string          `json:"name"`
	Entries map[string]Pair `json:"entries,omitempty"`
	Default Pair            `json:"default"`
}

// Resolve returns the pair for entity, or the default pair and false when
// the entity has no exact-match entry.
func (t Table) Resolve(entity string) (Pair, bool) {
	if p, ok := t.Entries[entity]; ok {
		return p, true
	}
	return t.Default, false
}

// Pair returns the resolved pair for entity, ignoring whether it was a default.
func (t Table) Pair(entity string) Pair {
	p, _ := t.Resolve(entity)
	return p
}

// Degenerate lists the entities whose pair has lower > upper, sorted.
// The default pair is reported as "default".
func (t Table) Degenerate() []string {
	var out []string
	for name, p := range t.Entries {
		if p.Degenerate() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	if t.Default.Degenerate() {
		out = append(out, "default")
	}
	return out
}

// Entities returns the table's entity keys, sorted.
func (t Table) Entities() []string {
	out := make([]string, 0, len(t.Entries))
	for name := range t.Entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Set is the collection of target tables loaded at process start.
// It is read-only after load.
type Set struct {
	tables map[string]Table
}

// NewSet builds a Set from tables keyed by their Name.
func NewSet(tables ...Table) Set {
	m := make(map[string]Table, len(tables))
	for _, t := range tables {
		m[t.Name] = t
	}
	return Set{tables: m}
}

// Table returns the table for a KPI family.
func (s Set) Table(family string) (Table, error) {
	t, ok := s.tables[family]
	if !ok {
		return Table{}, fmt.Errorf("%w: %s", ErrUnknownTable, family)
	}
	return t, nil
}

// Names returns the configured families, sorted.
func (s Set) Names() []string {
	out := make([]string, 0, len(s.tables))
	for name := range s.tables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Tables returns every table sorted by name.
func (s Set) Tables() []Table {
	names := s.Names()
	out := make([]Table, len(names))
	for i, name := range names {
		out[i] = s.tables[name]
	}
	return out
}
