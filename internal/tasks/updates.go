package tasks

import (
	"fmt"

	"github.com/desertthunder/chartx/internal/models"
)

// ProgressUpdate represents a progress event during a pipeline run.
//
// Used to send real-time updates to the CLI or server layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	Authenticate Phase = iota
	FetchCharts
	EnrichTracks
	Aggregate
	WriteReport
)

func (p Phase) String() string {
	switch p {
	case Authenticate:
		return "authenticate"
	case FetchCharts:
		return "fetch_charts"
	case EnrichTracks:
		return "enrich_tracks"
	case Aggregate:
		return "aggregate"
	case WriteReport:
		return "write_report"
	default:
		return ""
	}
}

func authenticateUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Authenticate,
		Step:    1,
		Total:   1,
		Message: "Acquiring catalog credentials...",
	}
}

func fetchTaskUpdate(step, total int, task models.FetchTask) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCharts,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching %s...", step, total, task),
		Data:    task,
	}
}

func taskCompletedUpdate(step, total int, res TaskResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Aggregate,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d rows, %d failed)", step, total, res.Task, len(res.Rows), res.RowsFailed),
		Data:    res.Task,
	}
}

func taskFailedUpdate(step, total int, res TaskResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Aggregate,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Task, res.Err),
		Data:    res.Task,
	}
}

func writeReportUpdate(rows int, uri string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteReport,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing %d rows to %s...", rows, uri),
	}
}

func emptyReportUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteReport,
		Step:    1,
		Total:   1,
		Message: "No rows collected; report skipped",
	}
}
