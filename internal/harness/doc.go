// Package harness runs dashboard scenarios as executable contract tests.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: sales_rolling_average
//	description: "Three-month team average over a sparse year"
//	now: 2025-05-15T12:00:00Z
//	view: sales
//	salesperson: Amantle
//	targets: targets.yaml        # optional, relative to the scenario file
//	filters:
//	  from: 2025-01-01
//	  to: 2025-12-31
//	  dimensions: { country: Botswana }
//	events:
//	  - id: s1
//	    timestamp: 2025-03-02T10:00:00Z
//	    entity_id: Amantle
//	    sale_made: "Yes"
//	    transaction_amount: 100
//	assertions:
//	  - type: kpi
//	    kpi: revenue_ytd
//	    status: below
//	  - type: series
//	    series: team_average
//	    month: Mar
//	    value: 75
//
// # Assertion Types
//
//   - kpi: checks any of status, trend, value, comparison, delta_percent and
//     defined on a named KPI
//   - series: checks one month of a named aligned series
//   - breakdown: checks the value (and optionally row count) of one group
//   - motivation: checks the sales view's motivation tier
//   - years: checks the resolved current and previous years
//   - leaderboard: checks the leaderboard names in order
//
// # Deterministic Testing
//
// Every scenario runs with a fixed clock pinned to its "now" and a fixed
// request ID, so the same scenario always produces the same report and
// golden snapshots compare byte for byte.
package harness
