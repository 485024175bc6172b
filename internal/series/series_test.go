package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kpidash/internal/aggregate"
)

func TestAlign_AlwaysTwelveEntries(t *testing.T) {
	inputs := [][]Point{
		nil,
		{{Month: 7, Value: 1}},
		{{Month: 1, Value: 1}, {Month: 12, Value: 2}},
	}
	var all []Point
	for m := 1; m <= 12; m++ {
		all = append(all, Point{Month: m, Value: float64(m)})
	}
	inputs = append(inputs, all)

	for _, points := range inputs {
		aligned := Align(points)
		require.Len(t, aligned, 12)
		assert.Equal(t, MonthLabels[:], aligned.Labels())
	}
}

func TestAlign_ZeroFillsAbsentMonths(t *testing.T) {
	aligned := Align([]Point{{Month: 3, Value: 100}, {Month: 2, Value: 50}})

	assert.Equal(t, []float64{0, 50, 100, 0, 0, 0, 0, 0, 0, 0, 0, 0}, aligned.Values())
	assert.False(t, aligned[0].Observed)
	assert.True(t, aligned[1].Observed)
	assert.True(t, aligned[2].Observed)
	assert.Equal(t, 150.0, aligned.Total())
}

func TestAlign_SumsDuplicatesIgnoresOutOfRange(t *testing.T) {
	aligned := Align([]Point{
		{Month: 5, Value: 1},
		{Month: 5, Value: 2},
		{Month: 0, Value: 99},
		{Month: 13, Value: 99},
	})

	assert.Equal(t, 3.0, aligned[4].Value)
	assert.Equal(t, 3.0, aligned.Total())
}

func TestFromRows(t *testing.T) {
	rows := []aggregate.Row{
		{Year: 2024, Month: 2, Value: aggregate.Value{V: 10, Defined: true}},
		{Year: 2025, Month: 2, Value: aggregate.Value{V: 50, Defined: true}},
		{Year: 2025, Month: 3, Value: aggregate.Value{V: 100, Defined: true}},
		{Year: 2025, Month: 4, Value: aggregate.Value{}},
	}

	points := FromRows(rows, 2025)
	assert.Equal(t, []Point{{Month: 2, Value: 50}, {Month: 3, Value: 100}, {Month: 4, Value: 0}}, points)

	aligned := Align(points)
	assert.True(t, aligned[3].Observed)
	assert.Equal(t, 0.0, aligned[3].Value)
}

func TestRollingMean(t *testing.T) {
	got := RollingMean([]float64{3, 6, 9, 12}, 3)
	assert.Equal(t, []float64{3, 4.5, 6, 9}, got)

	assert.Equal(t, []float64{1, 2, 3}, RollingMean([]float64{1, 2, 3}, 0))
	assert.Empty(t, RollingMean(nil, 3))
}

func TestRollingMean_FirstPositionIsItself(t *testing.T) {
	for _, window := range []int{1, 2, 3, 12, 50} {
		values := []float64{42, 1, 2, 3}
		assert.Equal(t, 42.0, RollingMean(values, window)[0])

		aligned := Align([]Point{{Month: 1, Value: 42}, {Month: 2, Value: 1}})
		assert.Equal(t, 42.0, aligned.RollingMean(window)[0].Value)
	}
}

func TestRollingMean_NeverLooksForward(t *testing.T) {
	values := []float64{1, 1, 1, 1000}
	got := RollingMean(values, 3)
	assert.Equal(t, 1.0, got[2])
}

func TestAligned_RollingMeanObservedMonths(t *testing.T) {
	rows := aggregate.Group(salesScenario(), []aggregate.Key{aggregate.KeyYear, aggregate.KeyMonth}, aggregate.SumAmount)
	aligned := Align(FromRows(rows, 2025))

	assert.Equal(t, 50.0, aligned[1].Value)
	assert.Equal(t, 100.0, aligned[2].Value)

	rolling := aligned.RollingMean(3)
	require.Len(t, rolling, 12)
	assert.Equal(t, 0.0, rolling[0].Value)
	assert.Equal(t, 50.0, rolling[1].Value)
	assert.Equal(t, 75.0, rolling[2].Value)
	assert.Equal(t, 75.0, rolling[3].Value)
	assert.Equal(t, 100.0, rolling[4].Value)
	assert.Equal(t, 0.0, rolling[5].Value)
	assert.Equal(t, aligned.Labels(), rolling.Labels())

	assert.Equal(t, 50.0, aligned[1].Value, "receiver is not modified")
}
