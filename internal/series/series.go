// Package series aligns sparse monthly data onto the fixed calendar axis.
//
// Aggregations grouped by (year, month) only produce rows for months that
// have events. Align reindexes them onto Jan..Dec: every month appears once,
// in calendar order, and months without data are zero-filled with
// Observed=false.
//
// Rolling means never look forward. Position i averages positions
// max(0, i-window+1)..i, so the first month is always its own mean.
package series

import (
	"github.com/roach88/kpidash/internal/aggregate"
)

// MonthLabels is the canonical month axis.
var MonthLabels = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Point is one month of a sparse series. Month is 1-based.
type Point struct {
	Month int
	Value float64
}

// Entry is one month of an aligned series.
type Entry struct {
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Observed bool    `json:"observed"`
}

// Aligned is a series on the canonical axis. It always has 12 entries.
type Aligned []Entry

// Align places points onto the canonical axis. Points for the same month
// are summed; months outside 1..12 are ignored.
func Align(points []Point) Aligned {
	out := make(Aligned, len(MonthLabels))
	for i, label := range MonthLabels {
		out[i].Label = label
	}
	for _, p := range points {
		if p.Month < 1 || p.Month > len(MonthLabels) {
			continue
		}
		e := &out[p.Month-1]
		e.Value += p.Value
		e.Observed = true
	}
	return out
}

// FromRows extracts the points of year from rows grouped by (year, month).
// Undefined values contribute 0 but still mark the month observed.
func FromRows(rows []aggregate.Row, year int) []Point {
	var points []Point
	for _, r := range rows {
		if r.Year != year || r.Month == 0 {
			continue
		}
		points = append(points, Point{Month: r.Month, Value: r.Value.Or(0)})
	}
	return points
}

// Values returns the entry values in axis order.
func (a Aligned) Values() []float64 {
	out := make([]float64, len(a))
	for i, e := range a {
		out[i] = e.Value
	}
	return out
}

// Labels returns the entry labels in axis order.
func (a Aligned) Labels() []string {
	out := make([]string, len(a))
	for i, e := range a {
		out[i] = e.Label
	}
	return out
}

// Total sums the series.
func (a Aligned) Total() float64 {
	var sum float64
	for _, e := range a {
		sum += e.Value
	}
	return sum
}

// RollingMean averages each position with up to window-1 positions before
// it. A window below 1 is treated as 1.
func RollingMean(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	for i := range values {
		start := max(0, i-window+1)
		var sum float64
		for _, v := range values[start : i+1] {
			sum += v
		}
		out[i] = sum / float64(i-start+1)
	}
	return out
}

// RollingMean is the trailing mean over observed months only. Zero-filled
// months do not count toward the divisor, and a position whose window holds
// no observed month is 0. The result keeps the labels and observed flags.
func (a Aligned) RollingMean(window int) Aligned {
	if window < 1 {
		window = 1
	}
	out := make(Aligned, len(a))
	copy(out, a)
	for i := range a {
		start := max(0, i-window+1)
		var sum float64
		var n int
		for _, e := range a[start : i+1] {
			if e.Observed {
				sum += e.Value
				n++
			}
		}
		if n == 0 {
			out[i].Value = 0
			continue
		}
		out[i].Value = sum / float64(n)
	}
	return out
}
