package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_SalesRollingAverage(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/sales_rolling_average.yaml")
	require.NoError(t, err)

	// To regenerate:
	//   go test ./internal/harness -run TestRunWithGolden -update
	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunWithGolden_AdsDemoFunnel(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/ads_demo_funnel.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestAssertGolden_RecomputedReport(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/ads_demo_funnel.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NoError(t, AssertGolden(t, "ads_demo_funnel", result.Report))
}

func TestSnapshot_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/sales_rolling_average.yaml")
	require.NoError(t, err)

	a, err := Run(scenario)
	require.NoError(t, err)
	b, err := Run(scenario)
	require.NoError(t, err)

	x, err := Snapshot(a.Report)
	require.NoError(t, err)
	y, err := Snapshot(b.Report)
	require.NoError(t, err)
	require.Equal(t, string(x), string(y))
}
