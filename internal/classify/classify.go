// Package classify turns aggregate values into KPI verdicts.
//
// Classify places a value against a (lower, upper) pair:
//
//	value <  lower          below
//	lower <= value < upper  approaching
//	value >= upper          meeting
//
// The pair is used as given. When lower > upper the approaching branch
// cannot be reached and values in [upper, lower) classify as below.
//
// TrendOf compares a value with its comparison; equality counts as up.
// DeltaPercent is expressed in percent and is 0 when the comparison is 0.
package classify

import (
	"github.com/roach88/kpidash/internal/aggregate"
	"github.com/roach88/kpidash/internal/target"
)

// Status is a threshold classification.
type Status string

const (
	Below       Status = "below"
	Approaching Status = "approaching"
	Meeting     Status = "meeting"
)

// Classify returns the status of v against pair.
func Classify(v float64, pair target.Pair) Status {
	switch {
	case v < pair.Lower:
		return Below
	case v < pair.Upper:
		return Approaching
	default:
		return Meeting
	}
}

// Trend is the direction of a value relative to its comparison.
type Trend string

const (
	Up   Trend = "up"
	Down Trend = "down"
)

// TrendOf is Up when v >= cmp.
func TrendOf(v, cmp float64) Trend {
	if v >= cmp {
		return Up
	}
	return Down
}

// DeltaPercent returns (v-cmp)/cmp*100, or 0 when cmp is 0.
func DeltaPercent(v, cmp float64) float64 {
	if cmp == 0 {
		return 0
	}
	return (v - cmp) / cmp * 100
}

// KPIResult is one classified KPI tile.
//
// Values keep full precision; rounding is left to the presentation layer.
type KPIResult struct {
	Name         string      `json:"name"`
	Value        float64     `json:"value"`
	Comparison   float64     `json:"comparison"`
	Target       target.Pair `json:"target"`
	Status       Status      `json:"status"`
	Trend        Trend       `json:"trend"`
	Delta        float64     `json:"delta"`
	// DeltaPercent is in percent units: 25 means Value is 25% above
	// Comparison, not 0.25. It is 0 when Comparison is 0.
	DeltaPercent float64     `json:"delta_percent"`

	// Defined is false when the underlying aggregate had no rows to average.
	// The remaining numeric fields are zero and should render as a placeholder.
	Defined bool `json:"defined"`
}

// Against classifies v against pair and compares it with pair.Upper.
func Against(name string, v float64, pair target.Pair) KPIResult {
	return build(name, v, pair.Upper, pair)
}

// VersusPrior classifies v against a prior-period value. The prior value is
// both bounds, so the result is meeting or below.
func VersusPrior(name string, v, prior float64) KPIResult {
	return build(name, v, prior, target.Pair{Lower: prior, Upper: prior})
}

// Undefined is the tile for an aggregate with no defined value.
func Undefined(name string, pair target.Pair) KPIResult {
	return KPIResult{Name: name, Comparison: pair.Upper, Target: pair}
}

// AgainstValue is Against for an aggregate value, yielding Undefined when
// the value is not defined.
func AgainstValue(name string, v aggregate.Value, pair target.Pair) KPIResult {
	if !v.Defined {
		return Undefined(name, pair)
	}
	return Against(name, v.V, pair)
}

func build(name string, v, cmp float64, pair target.Pair) KPIResult {
	return KPIResult{
		Name:         name,
		Value:        v,
		Comparison:   cmp,
		Target:       pair,
		Status:       Classify(v, pair),
		Trend:        TrendOf(v, cmp),
		Delta:        v - cmp,
		DeltaPercent: DeltaPercent(v, cmp),
		Defined:      true,
	}
}

// Motivation is the salesperson encouragement tier.
type Motivation string

const (
	Smashing Motivation = "smashing"
	Growing  Motivation = "growing"
	Focus    Motivation = "focus"
)

// MotivationOf ranks this year's revenue against the yearly goal first and
// last year's revenue second. Both comparisons are strict.
func MotivationOf(thisYear, lastYear, goal float64) Motivation {
	switch {
	case thisYear > goal:
		return Smashing
	case thisYear > lastYear:
		return Growing
	default:
		return Focus
	}
}

// Message is the tile text for the tier.
func (m Motivation) Message() string {
	switch m {
	case Smashing:
		return "You're smashing your yearly target, keep it up!"
	case Growing:
		return "You're growing, keep up the great momentum!"
	default:
		return "Stay focused, you're close to turning it around!"
	}
}
