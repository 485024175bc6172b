package window

import "time"

// Clock supplies the real-world "now" used by fallbacks and quarter anchoring.
//
// The engine never reads time.Now directly; every request threads a Clock so
// reports are reproducible under a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}
