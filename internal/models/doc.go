// Package models defines the value types that flow through a chart pipeline run.
//
// The package contains two categories of types:
//
// 1. Pipeline values: immutable records created once and copied, never mutated in place
//   - [FetchTask] : one (country, day) snapshot to retrieve
//   - [ChartRow] : one ranked line of a snapshot, later carrying genre tags
//   - [GenreRecord] : one (row, genre tag) fact derived during aggregation
//   - [AggregateKey] : the (genre, country, main genre) grouping tuple
//   - [ReportRow] : one flattened output line
//
// 2. Persistent entities: rows of the sqlite run history
//   - [Run] : a single pipeline execution with its counters and status
package models
