// Package dashboard runs the KPI pipeline behind each dashboard view.
//
// Every call to Engine.Run is a pure function of its inputs: the loaded
// dataset and a Request. The Request carries everything a session would
// otherwise hold as ambient state (filters, active view, selected
// salesperson, user, and the reference time), so two identical requests over
// the same dataset produce identical reports.
//
// # Pipeline
//
// Each view follows the same stages:
//
//  1. Filter: filter.Apply narrows the dataset by the request criteria.
//  2. Resolve: window.ResolveYears picks the comparison years from the
//     filtered sales; window.Windows derives MTD, QTD, YTD and the previous
//     month and year from the request time.
//  3. Aggregate: scalar and grouped aggregates, memoized per
//     (filter signature, narrowing, keys, metric) when a cache is configured.
//  4. Classify: each KPI is placed against its target pair or prior period.
//  5. Align: monthly series are reindexed onto Jan..Dec.
//
// # Views
//
//   - managerial: month revenue vs the previous month, YTD and QTD revenue
//     against the company targets, revenue by month for the current and the
//     prior calendar year, and the salesperson leaderboard.
//   - sales: the same revenue tiles resolved per salesperson against the
//     per-entity target tables, this and last year's monthly revenue with a
//     trailing team average, and the motivation tier.
//   - traffic: visits, product-page visits and sales against traffic targets,
//     plus sales and visit breakdowns by region, weekday, hour, device,
//     referrer and user agent.
//   - ads: average time on product page and demo requests for the real-world
//     current year, demo breakdowns per country and product, and monthly demo
//     and event series.
//
// # Degradation
//
// Nothing a user can select makes Run fail. Inverted date ranges and unknown
// categorical values yield empty datasets; missing target entries resolve to
// the table default; zero comparisons give a delta percent of 0; means over
// no rows produce an undefined KPI. Run only returns an error for an unknown
// view or a target family missing from the configured set.
package dashboard
