package event

// Dataset is an immutable, ordered view over loaded events.
// The zero value is an empty dataset.
type Dataset struct {
	events []Event
}

// NewDataset copies events into a new Dataset.
func NewDataset(events []Event) Dataset {
	cp := make([]Event, len(events))
	copy(cp, events)
	return Dataset{events: cp}
}

// Len returns the number of events.
func (d Dataset) Len() int {
	return len(d.events)
}

// Events returns a copy of the events in order.
// Returns an empty slice (not nil) for an empty dataset.
func (d Dataset) Events() []Event {
	cp := make([]Event, len(d.events))
	copy(cp, d.events)
	return cp
}

// Each calls fn for every event in order.
func (d Dataset) Each(fn func(Event)) {
	for _, e := range d.events {
		fn(e)
	}
}

// Select returns the events for which keep returns true, preserving order.
func (d Dataset) Select(keep func(Event) bool) Dataset {
	out := make([]Event, 0, len(d.events))
	for _, e := range d.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return Dataset{events: out}
}
