// Package schedule assembles per-day fixture schedules from the provider.
//
// An Aggregator fetches one UTC calendar day at a time, normalizes and sorts
// its fixtures, and caches the assembled day under a date key so explicit
// date lookups and upcoming ranges share the same upstream work.
//
// Multi-day aggregation is fail-fast: the first day that cannot be fetched
// aborts the whole range and its error is returned. Days with no fixtures
// are left out of an upcoming schedule.
//
// Days are fetched sequentially by default. With Config.MaxConcurrency above
// one they are fetched on a bounded worker pool; the result is still
// assembled in calendar order.
package schedule
