package aggregate

import (
	"strings"
	"sync"

	"github.com/roach88/kpidash/internal/event"
)

// Cache memoizes Group results keyed by (scope, keys, metric).
//
// Scope identifies the dataset being grouped: callers pass the filter
// signature plus whatever narrowing they applied on top of it. A cached
// result is only valid while the loaded dataset is unchanged; call Reset
// after loading a new one.
//
// A nil *Cache is valid and disables memoization.
//
// Thread-safety: Cache is safe for concurrent use via internal mutex.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]Row
	hits    int
	misses  int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]Row)}
}

// Group returns the memoized Group(ds, keys, metric) for scope, computing it on a miss.
func (c *Cache) Group(scope string, ds event.Dataset, keys []Key, metric Metric) []Row {
	if c == nil {
		return Group(ds, keys, metric)
	}

	id := cacheKey(scope, keys, metric)
	c.mu.Lock()
	if rows, ok := c.entries[id]; ok {
		c.hits++
		c.mu.Unlock()
		return copyRows(rows)
	}
	c.misses++
	c.mu.Unlock()

	rows := Group(ds, keys, metric)

	c.mu.Lock()
	c.entries[id] = rows
	c.mu.Unlock()
	return copyRows(rows)
}

// Scalar returns the memoized Scalar(ds, metric) for scope.
func (c *Cache) Scalar(scope string, ds event.Dataset, metric Metric) Value {
	return c.Group(scope, ds, nil, metric)[0].Value
}

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	if c == nil {
		return 0, 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Reset drops every entry.
func (c *Cache) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]Row)
	c.hits, c.misses = 0, 0
}

func cacheKey(scope string, keys []Key, metric Metric) string {
	parts := make([]string, 0, len(keys)+2)
	parts = append(parts, scope, string(metric))
	for _, k := range keys {
		parts = append(parts, string(k))
	}
	return strings.Join(parts, "\x1f")
}

// copyRows keeps cached rows isolated from callers that sort or edit them.
func copyRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		r.Keys = append([]string(nil), r.Keys...)
		out[i] = r
	}
	return out
}
