package aggregate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/kpidash/internal/event"
)

// Key is a group-by key.
type Key string

const (
	KeyYear         Key = "year"
	KeyMonth        Key = "month"
	KeyEntityID     Key = "entity_id"
	KeyRegion       Key = "region"
	KeyDeviceType   Key = "device_type"
	KeyReferrerType Key = "referrer_type"
	KeyDemoProduct  Key = "demo_product"
	KeyWeekday      Key = "weekday"
	KeyHour         Key = "hour"
	KeyUserAgent    Key = "user_agent"
	KeyPageType     Key = "page_type"
)

// Metric is the aggregate computed per group.
type Metric string

const (
	// Count is the number of rows in the group.
	Count Metric = "count"
	// SumAmount sums transaction_amount.
	SumAmount Metric = "sum"
	// MeanTimeOnPage averages time_on_page.
	MeanTimeOnPage Metric = "mean"
)

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case Count, SumAmount, MeanTimeOnPage:
		return Metric(s), nil
	default:
		return "", fmt.Errorf("unknown metric %q", s)
	}
}

// Value is an aggregate result. Defined is false only for a mean over no rows.
type Value struct {
	V       float64 `json:"value"`
	Defined bool    `json:"defined"`
}

// Or returns V when defined and placeholder otherwise.
func (v Value) Or(placeholder float64) float64 {
	if !v.Defined {
		return placeholder
	}
	return v.V
}

// Row is one group of an aggregation.
type Row struct {
	// Keys holds the rendered key values in group-key order.
	Keys []string `json:"keys"`

	// Year and Month are set when the group keys include them.
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`

	Value Value `json:"value"`

	// Rows is the number of events in the group.
	Rows int `json:"rows"`
}

// Key returns the rendered value of key k, or "" if the row was not grouped by k.
func (r Row) Key(keys []Key, k Key) string {
	for i, key := range keys {
		if key == k && i < len(r.Keys) {
			return r.Keys[i]
		}
	}
	return ""
}

type accumulator struct {
	keys     []string
	ordinals []int
	year     int
	month    int
	rows     int
	sum      float64
}

// Scalar aggregates the whole dataset into one value.
func Scalar(ds event.Dataset, metric Metric) Value {
	return Group(ds, nil, metric)[0].Value
}

// Group aggregates ds by keys. With no keys it returns exactly one row,
// even for an empty dataset.
func Group(ds event.Dataset, keys []Key, metric Metric) []Row {
	groups := make(map[string]*accumulator)
	var order []*accumulator

	ds.Each(func(e event.Event) {
		values := make([]string, len(keys))
		ordinals := make([]int, len(keys))
		for i, k := range keys {
			values[i], ordinals[i] = keyValue(e, k)
		}
		id := strings.Join(values, "\x00")
		acc, ok := groups[id]
		if !ok {
			acc = &accumulator{keys: values, ordinals: ordinals}
			for i, k := range keys {
				switch k {
				case KeyYear:
					acc.year = ordinals[i]
				case KeyMonth:
					acc.month = ordinals[i]
				}
			}
			groups[id] = acc
			order = append(order, acc)
		}
		acc.rows++
		switch metric {
		case SumAmount:
			acc.sum += e.TransactionAmount
		case MeanTimeOnPage:
			acc.sum += e.TimeOnPage
		}
	})

	if len(keys) == 0 && len(order) == 0 {
		order = append(order, &accumulator{keys: []string{}})
	}

	sort.SliceStable(order, func(i, j int) bool {
		return less(order[i], order[j], keys)
	})

	rows := make([]Row, len(order))
	for i, acc := range order {
		rows[i] = Row{
			Keys:  acc.keys,
			Year:  acc.year,
			Month: acc.month,
			Value: finish(acc, metric),
			Rows:  acc.rows,
		}
	}
	return rows
}

func finish(acc *accumulator, metric Metric) Value {
	switch metric {
	case Count:
		return Value{V: float64(acc.rows), Defined: true}
	case SumAmount:
		return Value{V: acc.sum, Defined: true}
	case MeanTimeOnPage:
		if acc.rows == 0 {
			return Value{}
		}
		return Value{V: acc.sum / float64(acc.rows), Defined: true}
	default:
		return Value{}
	}
}

// keyValue renders the key for e. The ordinal orders numeric keys and weekdays.
func keyValue(e event.Event, k Key) (string, int) {
	ts := e.Timestamp
	switch k {
	case KeyYear:
		return strconv.Itoa(ts.Year()), ts.Year()
	case KeyMonth:
		return strconv.Itoa(int(ts.Month())), int(ts.Month())
	case KeyHour:
		return strconv.Itoa(ts.Hour()), ts.Hour()
	case KeyWeekday:
		// Monday first.
		return ts.Weekday().String(), (int(ts.Weekday()) + 6) % 7
	case KeyEntityID:
		return e.EntityID, 0
	case KeyRegion:
		return e.Region, 0
	case KeyDeviceType:
		return e.DeviceType, 0
	case KeyReferrerType:
		return e.ReferrerType, 0
	case KeyDemoProduct:
		return e.DemoProduct, 0
	case KeyUserAgent:
		return e.UserAgent, 0
	case KeyPageType:
		return e.PageType, 0
	default:
		return "", 0
	}
}

func numeric(k Key) bool {
	return k == KeyYear || k == KeyMonth || k == KeyHour || k == KeyWeekday
}

func less(a, b *accumulator, keys []Key) bool {
	for i, k := range keys {
		if numeric(k) {
			if a.ordinals[i] != b.ordinals[i] {
				return a.ordinals[i] < b.ordinals[i]
			}
			continue
		}
		if a.keys[i] != b.keys[i] {
			return a.keys[i] < b.keys[i]
		}
	}
	return false
}

// SortByValue orders rows by value, descending when desc is set.
// Ties keep their key order.
func SortByValue(rows []Row, desc bool) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].Value.V > out[j].Value.V
		}
		return out[i].Value.V < out[j].Value.V
	})
	return out
}

// Lookup returns the value of the row whose keys equal keys.
// Missing groups yield the metric's empty value.
func Lookup(rows []Row, metric Metric, keys ...string) Value {
	for _, r := range rows {
		if equalKeys(r.Keys, keys) {
			return r.Value
		}
	}
	return finish(&accumulator{}, metric)
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// WithoutBlank drops rows with an empty key value. Events missing a
// categorical attribute form no group of their own.
func WithoutBlank(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !hasBlank(r.Keys) {
			out = append(out, r)
		}
	}
	return out
}

func hasBlank(keys []string) bool {
	for _, k := range keys {
		if k == "" {
			return true
		}
	}
	return false
}
