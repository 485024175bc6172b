// Package aggregate groups event datasets and computes scalar metrics.
//
// An aggregation is (dataset, group keys, metric):
//
//   - zero keys yield exactly one row (the KPI tile scalar)
//   - (year, month) yields one row per observed combination, never one per
//     canonical calendar month; alignment to twelve months is the series
//     package's job
//
// Empty-input rules:
//
//   - Count and SumAmount over zero rows are 0 and Defined
//   - MeanTimeOnPage over zero rows is not Defined; callers render a neutral
//     placeholder instead of propagating NaN
//
// Rows are returned in a deterministic order: ascending by key tuple, with
// numeric keys (year, month, hour) compared numerically and weekdays in
// Monday-first calendar order.
package aggregate
