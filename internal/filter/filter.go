// Package filter narrows an event dataset by date range and categorical
// dimensions.
//
// Filtering never fails. Malformed input degrades to an empty result
// (inverted date range) or an unrestricted one ("All"), so every dashboard
// view stays renderable.
package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/roach88/kpidash/internal/event"
)

// All is the dimension sentinel meaning "no restriction".
const All = "All"

// DateLayout is the layout used to parse and print range bounds.
const DateLayout = "2006-01-02"

// DateRange is an inclusive range over the date portion of event timestamps.
// A zero Start or End leaves that side unbounded.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParseDateRange parses YYYY-MM-DD bounds. Empty strings leave a side unbounded.
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange
	if start != "" {
		t, err := time.Parse(DateLayout, start)
		if err != nil {
			return DateRange{}, fmt.Errorf("parse start date: %w", err)
		}
		r.Start = t
	}
	if end != "" {
		t, err := time.Parse(DateLayout, end)
		if err != nil {
			return DateRange{}, fmt.Errorf("parse end date: %w", err)
		}
		r.End = t
	}
	return r, nil
}

// Inverted reports whether both bounds are set and Start is after End.
func (r DateRange) Inverted() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && dateKey(r.Start) > dateKey(r.End)
}

// Contains reports whether t's calendar date falls within the range.
func (r DateRange) Contains(t time.Time) bool {
	k := dateKey(t)
	if !r.Start.IsZero() && k < dateKey(r.Start) {
		return false
	}
	if !r.End.IsZero() && k > dateKey(r.End) {
		return false
	}
	return true
}

// dateKey orders calendar dates as yyyymmdd, ignoring time of day and zone.
func dateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// Criteria is the full filter selection for one request.
type Criteria struct {
	Range DateRange `json:"range"`

	// Dimensions maps a column to its single allowed value.
	// All or "" means no restriction.
	Dimensions map[event.Column]string `json:"dimensions,omitempty"`
}

// Signature returns a deterministic key for the criteria.
// Equal criteria always produce equal signatures.
func (c Criteria) Signature() string {
	var b strings.Builder
	if !c.Range.Start.IsZero() {
		b.WriteString(c.Range.Start.Format(DateLayout))
	}
	b.WriteString("..")
	if !c.Range.End.IsZero() {
		b.WriteString(c.Range.End.Format(DateLayout))
	}

	cols := make([]string, 0, len(c.Dimensions))
	for col, v := range c.Dimensions {
		if restricts(v) {
			cols = append(cols, string(col))
		}
	}
	sort.Strings(cols)
	for _, col := range cols {
		fmt.Fprintf(&b, "|%s=%s", col, EscapeValue(c.Dimensions[event.Column(col)]))
	}
	return b.String()
}

var signatureEscaper = strings.NewReplacer(`\`, `\\`, "|", `\|`, "=", `\=`)

// EscapeValue backslash-escapes the signature separators in v so that
// distinct criteria never render the same signature.
func EscapeValue(v string) string {
	return signatureEscaper.Replace(v)
}

// Apply returns the events matching the criteria, in input order.
// The input dataset is never modified.
func Apply(ds event.Dataset, c Criteria) event.Dataset {
	if c.Range.Inverted() {
		return event.Dataset{}
	}
	return ds.Select(func(e event.Event) bool {
		if !c.Range.Contains(e.Timestamp) {
			return false
		}
		for col, want := range c.Dimensions {
			if !restricts(want) {
				continue
			}
			if !matches(e, col, want) {
				return false
			}
		}
		return true
	})
}

// Dimension narrows ds to events whose column equals value.
// All or "" returns ds unchanged.
func Dimension(ds event.Dataset, col event.Column, value string) event.Dataset {
	if !restricts(value) {
		return ds
	}
	return ds.Select(func(e event.Event) bool {
		return matches(e, col, value)
	})
}

// SalesOnly keeps events with a successful sale.
func SalesOnly(ds event.Dataset) event.Dataset {
	return ds.Select(event.Event.IsSale)
}

// DemosOnly keeps events that requested a demo.
func DemosOnly(ds event.Dataset) event.Dataset {
	return ds.Select(event.Event.IsDemo)
}

// Year keeps events whose timestamp falls in the given calendar year.
func Year(ds event.Dataset, year int) event.Dataset {
	return ds.Select(func(e event.Event) bool {
		return e.Timestamp.Year() == year
	})
}

// Options returns All followed by the sorted distinct non-empty values of col.
func Options(ds event.Dataset, col event.Column) []string {
	seen := make(map[string]struct{})
	ds.Each(func(e event.Event) {
		if v, ok := e.Value(col); ok && v != "" {
			seen[v] = struct{}{}
		}
	})
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return append([]string{All}, values...)
}

func restricts(value string) bool {
	return value != "" && value != All
}

func matches(e event.Event, col event.Column, want string) bool {
	got, ok := e.Value(col)
	if !ok {
		// Not a categorical column; nothing can match.
		return false
	}
	if col.CaseInsensitive() {
		return event.FoldEqual(got, want)
	}
	return got == want
}
