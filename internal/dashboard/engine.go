package dashboard

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roach88/kpidash/internal/aggregate"
	"github.com/roach88/kpidash/internal/event"
	"github.com/roach88/kpidash/internal/filter"
	"github.com/roach88/kpidash/internal/series"
	"github.com/roach88/kpidash/internal/target"
	"github.com/roach88/kpidash/internal/window"
)

// DefaultRollingWindow is the team-average window in months.
const DefaultRollingWindow = 3

// Engine computes dashboard reports.
//
// Thread-safety: Engine holds no per-request state. Run is safe for
// concurrent use as long as the configured cache is (aggregate.Cache is).
type Engine struct {
	targets target.Set
	cache   *aggregate.Cache
	log     *logrus.Entry
	rolling int
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache memoizes aggregates across runs. Reset the cache when the loaded
// dataset changes.
func WithCache(c *aggregate.Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logrus.Logger) Option {
	return func(e *Engine) {
		e.log = logrus.NewEntry(l)
	}
}

// WithRollingWindow sets the team-average window. Values below 1 keep the default.
func WithRollingWindow(months int) Option {
	return func(e *Engine) {
		if months >= 1 {
			e.rolling = months
		}
	}
}

// New creates an Engine over the given target tables.
// Tables with inverted pairs are logged once as warnings; they are used as is.
func New(targets target.Set, opts ...Option) *Engine {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Engine{
		targets: targets,
		log:     logrus.NewEntry(discard),
		rolling: DefaultRollingWindow,
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, t := range targets.Tables() {
		if bad := t.Degenerate(); len(bad) > 0 {
			e.log.WithFields(logrus.Fields{
				"table":    t.Name,
				"entities": bad,
			}).Warn("target pairs have lower above upper; approaching tier is unreachable")
		}
	}
	return e
}

// Run computes the report for req over ds. ds is never modified.
func (e *Engine) Run(ds event.Dataset, req Request) (*Report, error) {
	start := time.Now()
	log := e.log.WithFields(logrus.Fields{
		"request_id": req.ID,
		"view":       req.View,
	})
	if req.User != "" {
		log = log.WithField("user", req.User)
	}

	filtered := filter.Apply(ds, req.Criteria)
	sig := req.Criteria.Signature()
	rep := &Report{
		RequestID:  req.ID,
		View:       req.View,
		Now:        req.Now,
		Signature:  sig,
		Events:     filtered.Len(),
		Series:     map[string]series.Aligned{},
		Breakdowns: map[string][]aggregate.Row{},
	}

	s := scope{cache: e.cache, name: sig, ds: filtered}
	clock := window.ClockFunc(func() time.Time { return req.Now })

	var err error
	switch req.View {
	case Managerial:
		err = e.managerial(rep, s, clock)
	case SalesTeam:
		err = e.salesTeam(rep, s, clock, req.salesperson())
	case Traffic:
		err = e.traffic(rep, s, clock)
	case Advertisement:
		err = e.advertisement(rep, s, req.Now)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownView, req.View)
	}
	if err != nil {
		log.WithError(err).Error("view failed")
		return nil, err
	}

	hits, misses := e.cache.Stats()
	log.WithFields(logrus.Fields{
		"signature":    sig,
		"events":       rep.Events,
		"kpis":         len(rep.KPIs),
		"cache_hits":   hits,
		"cache_misses": misses,
		"elapsed":      time.Since(start).String(),
	}).Debug("view computed")
	return rep, nil
}

// table resolves a target family.
func (e *Engine) table(family string) (target.Table, error) {
	t, err := e.targets.Table(family)
	if err != nil {
		return target.Table{}, fmt.Errorf("resolve targets: %w", err)
	}
	return t, nil
}

// scope is a named narrowing of the filtered dataset. The name extends the
// filter signature so memoized aggregates never cross scopes.
type scope struct {
	cache *aggregate.Cache
	name  string
	ds    event.Dataset
}

func (s scope) narrow(name string, keep func(event.Event) bool) scope {
	return scope{cache: s.cache, name: s.name + "|" + name, ds: s.ds.Select(keep)}
}

func (s scope) within(w window.TimeWindow) scope {
	return s.narrow(w.String(), func(e event.Event) bool {
		return w.Contains(e.Timestamp)
	})
}

func (s scope) year(y int) scope {
	return s.within(window.TimeWindow{Kind: window.YearToDate, Year: y})
}

func (s scope) sales() scope {
	return s.narrow("sales", event.Event.IsSale)
}

func (s scope) demos() scope {
	return s.narrow("demos", event.Event.IsDemo)
}

func (s scope) scalar(metric aggregate.Metric) aggregate.Value {
	return s.cache.Scalar(s.name, s.ds, metric)
}

func (s scope) sum() float64 {
	return s.scalar(aggregate.SumAmount).V
}

func (s scope) count() float64 {
	return s.scalar(aggregate.Count).V
}

func (s scope) group(metric aggregate.Metric, keys ...aggregate.Key) []aggregate.Row {
	return s.cache.Group(s.name, s.ds, keys, metric)
}

// monthly aligns the (year, month) aggregate of s for year.
func (s scope) monthly(metric aggregate.Metric, year int) series.Aligned {
	rows := s.group(metric, aggregate.KeyYear, aggregate.KeyMonth)
	return series.Align(series.FromRows(rows, year))
}

// categories groups by categorical keys, leaving out events with an empty
// value for any of them.
func (s scope) categories(metric aggregate.Metric, keys ...aggregate.Key) []aggregate.Row {
	return aggregate.WithoutBlank(s.group(metric, keys...))
}

// valueCounts groups by one key and orders by count, largest first.
func (s scope) valueCounts(k aggregate.Key) []aggregate.Row {
	return aggregate.SortByValue(s.categories(aggregate.Count, k), true)
}
