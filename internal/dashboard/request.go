package dashboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/kpidash/internal/filter"
	"github.com/roach88/kpidash/internal/window"
)

// ErrUnknownView is returned for a view name the engine does not serve.
var ErrUnknownView = errors.New("unknown view")

// View names a dashboard view.
type View string

const (
	Managerial    View = "managerial"
	SalesTeam     View = "sales"
	Traffic       View = "traffic"
	Advertisement View = "ads"
)

// Views lists the served views in menu order.
var Views = []View{Managerial, SalesTeam, Traffic, Advertisement}

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Request is the explicit per-interaction context for a view.
type Request struct {
	// ID correlates log lines of one run.
	ID string `json:"id"`

	// Now is the reference time. Month and quarter windows, the ads view year
	// and the no-data year fallback all derive from it.
	Now time.Time `json:"now"`

	Criteria filter.Criteria `json:"criteria"`
	View     View            `json:"view"`

	// Salesperson narrows the sales view; "" or filter.All selects everyone.
	Salesperson string `json:"salesperson,omitempty"`

	// User is the logged-in user, recorded for logging only.
	User string `json:"user,omitempty"`
}

// IDGenerator generates request IDs.
// Implemented by UUIDv7Generator (production) and testutil.FixedIDGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 request IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewRequest stamps a request for view with an ID and the clock's time.
// A nil ids uses UUIDv7Generator.
func NewRequest(clock window.Clock, ids IDGenerator, view View) Request {
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	return Request{
		ID:       ids.Generate(),
		Now:      clock.Now(),
		View:     view,
		Criteria: filter.Criteria{},
	}
}

// salesperson returns the selected salesperson, or "" for everyone.
func (r Request) salesperson() string {
	if r.Salesperson == filter.All {
		return ""
	}
	return r.Salesperson
}
