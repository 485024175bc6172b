// Package window resolves the calendar windows KPIs are computed over.
//
// Two resolutions drive every comparison downstream:
//
// Year resolution (ResolveYears) picks the two most recent years that have
// successful sales, falling back to a synthetic previous year or to the
// real-world clock when data is sparse.
//
// Month resolution (ResolveMonth) picks the reference month and the month
// before it, wrapping January back to December of the previous year.
//
// Quarter-to-date is anchored to the real-world quarter of the reference
// date even when the resolved current year differs from the real-world year.
// Such a window may select no data; that is dashboard behavior.
package window

import (
	"fmt"
	"sort"
	"time"

	"github.com/roach88/kpidash/internal/event"
)

// Years is the resolved year-over-year comparison pair.
type Years struct {
	Current  int `json:"current"`
	Previous int `json:"previous"`
}

// ResolveYears determines the current and previous comparison years from
// the distinct years of successful sales in ds.
//
//   - two or more years: the latest and the second latest (not necessarily adjacent)
//   - exactly one year: that year and the year before it
//   - none: the clock's year and the year before it
func ResolveYears(ds event.Dataset, clock Clock) Years {
	years := SaleYears(ds)
	switch {
	case len(years) >= 2:
		return Years{Current: years[len(years)-1], Previous: years[len(years)-2]}
	case len(years) == 1:
		return Years{Current: years[0], Previous: years[0] - 1}
	default:
		now := clock.Now().Year()
		return Years{Current: now, Previous: now - 1}
	}
}

// SaleYears returns the distinct calendar years of successful sales, ascending.
func SaleYears(ds event.Dataset) []int {
	seen := make(map[int]struct{})
	ds.Each(func(e event.Event) {
		if e.IsSale() {
			seen[e.Timestamp.Year()] = struct{}{}
		}
	})
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Month is the resolved month-over-month comparison.
type Month struct {
	Year     int `json:"year"`
	Target   int `json:"target"`
	Prev     int `json:"prev"`
	PrevYear int `json:"prev_year"`
}

// ResolveMonth resolves the target month of ref and the month before it.
// January wraps to December of the previous year.
func ResolveMonth(ref time.Time) Month {
	return ResolveMonthIn(ref.Year(), ref)
}

// ResolveMonthIn applies the ResolveMonth arithmetic to ref's month while
// anchoring the year to year. Dashboards use it to pair the real-world month
// with the resolved current year.
func ResolveMonthIn(year int, ref time.Time) Month {
	target := int(ref.Month())
	m := Month{Year: year, Target: target, Prev: target - 1, PrevYear: year}
	if target == 1 {
		m.Prev = 12
		m.PrevYear = year - 1
	}
	return m
}

// Quarter returns the calendar quarter (1..4) of t.
func Quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// Kind names a TimeWindow.
type Kind string

const (
	MonthToDate   Kind = "mtd"
	QuarterToDate Kind = "qtd"
	YearToDate    Kind = "ytd"
	PreviousMonth Kind = "previous_month"
	PreviousYear  Kind = "previous_year"
)

// TimeWindow selects events by (year, month|quarter|none).
// Exactly one of Month and Quarter is non-zero, or neither for whole years.
type TimeWindow struct {
	Kind    Kind `json:"kind"`
	Year    int  `json:"year"`
	Month   int  `json:"month,omitempty"`
	Quarter int  `json:"quarter,omitempty"`
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	if t.Year() != w.Year {
		return false
	}
	if w.Month != 0 && int(t.Month()) != w.Month {
		return false
	}
	if w.Quarter != 0 && Quarter(t) != w.Quarter {
		return false
	}
	return true
}

// Select returns the events of ds inside the window.
func (w TimeWindow) Select(ds event.Dataset) event.Dataset {
	return ds.Select(func(e event.Event) bool {
		return w.Contains(e.Timestamp)
	})
}

// String renders the window, e.g. "qtd 2025-Q2".
func (w TimeWindow) String() string {
	switch {
	case w.Month != 0:
		return fmt.Sprintf("%s %d-%02d", w.Kind, w.Year, w.Month)
	case w.Quarter != 0:
		return fmt.Sprintf("%s %d-Q%d", w.Kind, w.Year, w.Quarter)
	default:
		return fmt.Sprintf("%s %d", w.Kind, w.Year)
	}
}

// Set is the full family of windows for one request.
type Set struct {
	MTD       TimeWindow `json:"mtd"`
	QTD       TimeWindow `json:"qtd"`
	YTD       TimeWindow `json:"ytd"`
	PrevMonth TimeWindow `json:"previous_month"`
	PrevYear  TimeWindow `json:"previous_year"`
}

// Windows builds the window family for the resolved years and reference date.
// The month and quarter come from ref; the years come from years.
func Windows(years Years, ref time.Time) Set {
	m := ResolveMonthIn(years.Current, ref)
	return Set{
		MTD:       TimeWindow{Kind: MonthToDate, Year: years.Current, Month: m.Target},
		QTD:       TimeWindow{Kind: QuarterToDate, Year: years.Current, Quarter: Quarter(ref)},
		YTD:       TimeWindow{Kind: YearToDate, Year: years.Current},
		PrevMonth: TimeWindow{Kind: PreviousMonth, Year: m.PrevYear, Month: m.Prev},
		PrevYear:  TimeWindow{Kind: PreviousYear, Year: years.Previous},
	}
}
