// Package repositories implements SQLite persistence for pipeline run history.
//
// [RunRepository] stores one row per run in the runs table and the flattened aggregate of every
// written report in report_rows. Report rows are removed with their run (ON DELETE CASCADE).
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
