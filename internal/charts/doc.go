// Package charts produces and retrieves daily regional chart snapshots.
//
// # Task generation
//
// [Tasks] expands a country list and a trailing day window into a lazy sequence of [models.FetchTask].
// The window is half open and ends yesterday: for days = N it covers [today-N-1, today-1).
// Countries keep their input order and each country's days run oldest to newest.
//
// # Snapshot format
//
// A snapshot is a comma separated table. The first two lines (a note and the column header) are
// discarded; every remaining line has five positional fields: rank, track name, artist, streams, URL.
// [Parse] turns such a payload into [models.ChartRow] values stamped with the task's country and date.
//
// # Fetching
//
// [Fetcher] substitutes the country for $1 and the date for $2 in the URL template and downloads the
// payload with a browser-like User-Agent. Any failure is returned wrapped in [shared.ErrTaskFetch];
// the caller decides to skip the task.
package charts
