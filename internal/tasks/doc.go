// Package tasks runs the chart genre pipeline with real-time progress reporting.
//
// # Run
//
// [ChartEngine.Run] performs one complete run:
//
//  1. Acquire catalog credentials. Failure aborts before any fetch.
//  2. Generate one [models.FetchTask] per (country, day) and hand them to the fetch workers.
//  3. Each worker fetches a snapshot and enriches its rows through the shared [Enricher].
//  4. The collector folds every [TaskResult] into a [report.Table] on a single goroutine.
//  5. Write the flattened table through the [ReportWriter], unless nothing was collected.
//
// # Failure Isolation
//
// A failed fetch drops that task only. A failed enrichment keeps the row with the sentinel genre
// [models.ErrorGenre]. Only [shared.ErrCredential] and [shared.ErrOutputWrite] fail a run.
//
// # Progress Reporting
//
// [ProgressUpdate] values are sent on an optional channel. Updates use select with default to prevent blocking.
//
// # Run History
//
// The optional [RunRecorder] (repositories.RunRepository) stores each run and its report rows.
// Recording errors are logged and ignored.
package tasks
