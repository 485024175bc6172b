package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kpidash/internal/event"
)

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func salesDataset() event.Dataset {
	return event.NewDataset([]event.Event{
		{ID: "1", Timestamp: at(2025, 3, 3, 9), EntityID: "Amantle", Region: "Botswana", SaleMade: "yes", TransactionAmount: 100, TimeOnPage: 4},
		{ID: "2", Timestamp: at(2025, 2, 4, 10), EntityID: "Lorato", Region: "Namibia", SaleMade: "yes", TransactionAmount: 50, TimeOnPage: 2},
		{ID: "3", Timestamp: at(2025, 3, 5, 9), EntityID: "Amantle", Region: "Botswana", SaleMade: "yes", TransactionAmount: 25.5, TimeOnPage: 6},
		{ID: "4", Timestamp: at(2024, 12, 6, 23), EntityID: "Lorato", Region: "Botswana", SaleMade: "yes", TransactionAmount: 10},
	})
}

func TestScalar_EmptyInput(t *testing.T) {
	var empty event.Dataset

	assert.Equal(t, Value{V: 0, Defined: true}, Scalar(empty, Count))
	assert.Equal(t, Value{V: 0, Defined: true}, Scalar(empty, SumAmount))

	mean := Scalar(empty, MeanTimeOnPage)
	assert.False(t, mean.Defined, "mean over zero rows is undefined")
	assert.False(t, math.IsNaN(mean.V))
	assert.Equal(t, -1.0, mean.Or(-1))
}

func TestScalar(t *testing.T) {
	ds := salesDataset()

	assert.Equal(t, 4.0, Scalar(ds, Count).V)
	assert.InDelta(t, 185.5, Scalar(ds, SumAmount).V, 1e-9)
	assert.InDelta(t, 3.0, Scalar(ds, MeanTimeOnPage).V, 1e-9)
}

func TestGroup_ZeroKeysAlwaysOneRow(t *testing.T) {
	rows := Group(event.Dataset{}, nil, Count)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].Rows)
	assert.Empty(t, rows[0].Keys)
}

func TestGroup_YearMonthObservedOnly(t *testing.T) {
	rows := Group(salesDataset(), []Key{KeyYear, KeyMonth}, SumAmount)

	require.Len(t, rows, 3, "one row per observed (year, month), not per calendar month")
	assert.Equal(t, []string{"2024", "12"}, rows[0].Keys)
	assert.Equal(t, 2024, rows[0].Year)
	assert.Equal(t, 12, rows[0].Month)
	assert.Equal(t, 10.0, rows[0].Value.V)

	assert.Equal(t, 2, rows[1].Month)
	assert.Equal(t, 50.0, rows[1].Value.V)

	assert.Equal(t, 3, rows[2].Month)
	assert.InDelta(t, 125.5, rows[2].Value.V, 1e-9)
	assert.Equal(t, 2, rows[2].Rows)
}

func TestGroup_NumericKeysSortNumerically(t *testing.T) {
	ds := event.NewDataset([]event.Event{
		{Timestamp: at(2025, 10, 1, 0)},
		{Timestamp: at(2025, 9, 1, 0)},
		{Timestamp: at(2025, 1, 1, 0)},
	})

	rows := Group(ds, []Key{KeyMonth}, Count)
	require.Len(t, rows, 3)
	assert.Equal(t, []int{1, 9, 10}, []int{rows[0].Month, rows[1].Month, rows[2].Month})
}

func TestGroup_Weekday(t *testing.T) {
	ds := event.NewDataset([]event.Event{
		{Timestamp: at(2025, 3, 9, 0)},  // Sunday
		{Timestamp: at(2025, 3, 3, 0)},  // Monday
		{Timestamp: at(2025, 3, 5, 0)},  // Wednesday
		{Timestamp: at(2025, 3, 10, 0)}, // Monday
	})

	rows := Group(ds, []Key{KeyWeekday}, Count)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Monday"}, rows[0].Keys)
	assert.Equal(t, 2.0, rows[0].Value.V)
	assert.Equal(t, []string{"Wednesday"}, rows[1].Keys)
	assert.Equal(t, []string{"Sunday"}, rows[2].Keys)
}

func TestGroup_CountMatchesPredicate(t *testing.T) {
	ds := salesDataset()
	rows := Group(ds, []Key{KeyEntityID, KeyRegion}, Count)

	for _, r := range rows {
		want := 0
		ds.Each(func(e event.Event) {
			if e.EntityID == r.Keys[0] && e.Region == r.Keys[1] {
				want++
			}
		})
		assert.Equal(t, float64(want), r.Value.V, "group %v", r.Keys)
		assert.Equal(t, want, r.Rows)
	}
}

func TestGroup_Hour(t *testing.T) {
	rows := Group(salesDataset(), []Key{KeyHour}, Count)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"9"}, rows[0].Keys)
	assert.Equal(t, 2.0, rows[0].Value.V)
	assert.Equal(t, []string{"23"}, rows[2].Keys)
}

func TestRow_Key(t *testing.T) {
	keys := []Key{KeyEntityID, KeyYear}
	rows := Group(salesDataset(), keys, SumAmount)

	assert.Equal(t, "Amantle", rows[0].Key(keys, KeyEntityID))
	assert.Equal(t, "2025", rows[0].Key(keys, KeyYear))
	assert.Equal(t, "", rows[0].Key(keys, KeyRegion))
}

func TestSortByValue(t *testing.T) {
	rows := Group(salesDataset(), []Key{KeyEntityID}, SumAmount)
	sorted := SortByValue(rows, true)

	require.Len(t, sorted, 2)
	assert.Equal(t, "Amantle", sorted[0].Keys[0])
	assert.Equal(t, "Lorato", sorted[1].Keys[0])
	assert.Equal(t, "Amantle", rows[0].Keys[0], "input is not reordered")
}

func TestWithoutBlank(t *testing.T) {
	ds := event.NewDataset([]event.Event{
		{ID: "1", Timestamp: at(2025, 3, 3, 9), EntityID: "Amantle", Region: "Botswana", SaleMade: "yes", TransactionAmount: 100},
		{ID: "2", Timestamp: at(2025, 3, 4, 9), Region: "Namibia", SaleMade: "yes", TransactionAmount: 500},
		{ID: "3", Timestamp: at(2025, 3, 5, 9), EntityID: "Lorato", SaleMade: "yes", TransactionAmount: 50},
	})

	rows := Group(ds, []Key{KeyEntityID}, SumAmount)
	require.Len(t, rows, 3)
	assert.Equal(t, "", rows[0].Keys[0], "Group keeps the blank group")

	kept := WithoutBlank(rows)
	require.Len(t, kept, 2)
	assert.Equal(t, "Amantle", kept[0].Keys[0])
	assert.Equal(t, "Lorato", kept[1].Keys[0])

	pairs := WithoutBlank(Group(ds, []Key{KeyEntityID, KeyRegion}, Count))
	require.Len(t, pairs, 1)
	assert.Equal(t, []string{"Amantle", "Botswana"}, pairs[0].Keys)

	assert.Len(t, WithoutBlank(Group(ds, nil, Count)), 1, "the zero-key row has no keys to be blank")
}

func TestLookup(t *testing.T) {
	rows := Group(salesDataset(), []Key{KeyYear, KeyMonth}, SumAmount)

	assert.Equal(t, 50.0, Lookup(rows, SumAmount, "2025", "2").V)
	assert.Equal(t, Value{V: 0, Defined: true}, Lookup(rows, SumAmount, "2025", "7"))
	assert.False(t, Lookup(nil, MeanTimeOnPage, "x").Defined)
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("sum")
	require.NoError(t, err)
	assert.Equal(t, SumAmount, m)

	_, err = ParseMetric("median")
	assert.Error(t, err)
}

func TestCache_Memoizes(t *testing.T) {
	c := NewCache()
	ds := salesDataset()

	first := c.Group("all", ds, []Key{KeyEntityID}, SumAmount)
	second := c.Group("all", ds, []Key{KeyEntityID}, SumAmount)
	assert.Equal(t, first, second)

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	_ = c.Scalar("all", ds, Count)
	_, misses = c.Stats()
	assert.Equal(t, 2, misses, "different keys and metric miss")

	c.Reset()
	hits, misses = c.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestCache_ReturnsIsolatedRows(t *testing.T) {
	c := NewCache()
	ds := salesDataset()

	rows := c.Group("all", ds, []Key{KeyEntityID}, Count)
	rows[0].Keys[0] = "mutated"

	again := c.Group("all", ds, []Key{KeyEntityID}, Count)
	assert.Equal(t, "Amantle", again[0].Keys[0])
}

func TestCache_Nil(t *testing.T) {
	var c *Cache
	ds := salesDataset()

	assert.Equal(t, Scalar(ds, Count), c.Scalar("x", ds, Count))
	hits, misses := c.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
	c.Reset()
}
