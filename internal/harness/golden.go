package harness

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/kpidash/internal/dashboard"
)

// Snapshot renders a report in its golden form, the deterministic text
// rendering of dashboard.Report.WriteText.
func Snapshot(report *dashboard.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := report.WriteText(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares the report against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the report doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result.Report); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed report against a golden file.
func AssertGolden(t *testing.T, name string, report *dashboard.Report) error {
	t.Helper()

	data, err := Snapshot(report)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
