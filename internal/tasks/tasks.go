// package tasks runs the chart pipeline: fetch snapshots, enrich rows with genres, aggregate and write the report.
package tasks

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chartx/internal/charts"
	"github.com/desertthunder/chartx/internal/metrics"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/report"
	"github.com/desertthunder/chartx/internal/services"
	"github.com/desertthunder/chartx/internal/shared"
)

// ChartFetcher retrieves the rows of one snapshot.
type ChartFetcher interface {
	Fetch(ctx context.Context, task models.FetchTask) ([]models.ChartRow, error)
}

// ReportWriter persists the flattened aggregate.
type ReportWriter interface {
	Write(ctx context.Context, rows []models.ReportRow) error
}

// RunRecorder stores run history. Implemented by repositories.RunRepository.
type RunRecorder interface {
	Create(ctx context.Context, run *models.Run) error
	Finish(ctx context.Context, run *models.Run) error
	SaveRows(ctx context.Context, runID string, rows []models.ReportRow) error
}

// TaskResult is what a fetch worker hands to the collector for one task.
type TaskResult struct {
	Task       models.FetchTask
	Rows       []models.ChartRow // enriched rows, including sentinel rows
	RowsFailed int
	Err        error // non-nil when the task contributed nothing
}

// RunResult summarizes one pipeline run.
type RunResult struct {
	ID          string
	Tasks       int
	TasksFailed int
	Rows        int
	RowsFailed  int
	Table       *report.Table
	OutputPath  string
	Written     bool
	StartedAt   time.Time
	FinishedAt  time.Time
}

// EngineOpts configures a [ChartEngine].
type EngineOpts struct {
	Countries []string
	Days      int
	Workers   int              // concurrent fetch workers (default: 1, max: 16)
	Output    string           // destination reported in results and history
	Now       func() time.Time // clock for the window and run timestamps (default: time.Now)
}

// ChartEngine orchestrates one run of the pipeline.
type ChartEngine struct {
	fetcher     ChartFetcher
	credentials services.CredentialSource
	enricher    *Enricher
	sink        ReportWriter
	runs        RunRecorder
	metrics     *metrics.Metrics
	logger      *log.Logger
	opts        EngineOpts
}

// NewChartEngine creates a new ChartEngine with the provided collaborators.
func NewChartEngine(
	fetcher ChartFetcher,
	credentials services.CredentialSource,
	enricher *Enricher,
	sink ReportWriter,
	opts EngineOpts,
) *ChartEngine {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Workers > 16 {
		opts.Workers = 16
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &ChartEngine{
		fetcher:     fetcher,
		credentials: credentials,
		enricher:    enricher,
		sink:        sink,
		opts:        opts,
		logger:      shared.NewLogger(io.Discard),
	}
}

// SetRunRecorder enables run history. Recording failures are logged and never fail a run.
func (e *ChartEngine) SetRunRecorder(r RunRecorder) { e.runs = r }

// SetMetrics enables Prometheus collectors.
func (e *ChartEngine) SetMetrics(m *metrics.Metrics) { e.metrics = m }

// SetLogger replaces the discard logger.
func (e *ChartEngine) SetLogger(l *log.Logger) { e.logger = l }

// sendProgress sends a progress update without blocking
func (e *ChartEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run executes one pipeline run.
//
// Failed fetches and failed enrichments are logged and counted but never returned. Only a
// credential failure ([shared.ErrCredential]), a report write failure ([shared.ErrOutputWrite])
// or cancellation of ctx is returned as an error. When no rows are collected nothing is written.
func (e *ChartEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*RunResult, error) {
	start := e.opts.Now()
	result := &RunResult{
		ID:         shared.GenerateID(),
		Tasks:      charts.Count(e.opts.Countries, e.opts.Days),
		Table:      report.NewTable(),
		OutputPath: e.opts.Output,
		StartedAt:  start,
	}
	logger := shared.WithLogger(e.logger, "run", result.ID)

	run := &models.Run{
		ID:         result.ID,
		Status:     models.RunRunning,
		Countries:  e.opts.Countries,
		Days:       e.opts.Days,
		TasksTotal: result.Tasks,
		OutputPath: e.opts.Output,
		StartedAt:  start,
	}
	e.recordStart(ctx, logger, run)

	err := e.execute(ctx, logger, progress, result)
	result.FinishedAt = e.opts.Now()
	e.recordFinish(ctx, logger, run, result, err)
	return result, err
}

func (e *ChartEngine) execute(ctx context.Context, logger *log.Logger, progress chan<- ProgressUpdate, result *RunResult) error {
	e.sendProgress(progress, authenticateUpdate())
	cred, err := e.credentials.Acquire(ctx)
	if err != nil {
		logger.Error("credential acquisition failed", "error", err)
		return err
	}
	logger.Debug("credentials acquired", "expires_in", cred.ExpiresIn)

	logger.Info("starting run", "countries", e.opts.Countries, "days", e.opts.Days, "tasks", result.Tasks, "workers", e.opts.Workers)

	if err := e.collect(ctx, logger, progress, result); err != nil {
		return err
	}

	if result.Rows == 0 {
		logger.Warn("no rows collected; skipping report", "tasks_failed", result.TasksFailed)
		e.sendProgress(progress, emptyReportUpdate())
		return nil
	}

	rows := result.Table.Rows()
	e.sendProgress(progress, writeReportUpdate(len(rows), e.opts.Output))
	if err := e.sink.Write(ctx, rows); err != nil {
		logger.Error("report write failed", "output", e.opts.Output, "error", err)
		return err
	}
	result.Written = true

	logger.Info("run complete",
		"rows", result.Rows, "rows_failed", result.RowsFailed,
		"tasks_failed", result.TasksFailed, "report_rows", len(rows), "streams", result.Table.Total(),
	)
	return nil
}

// collect fans tasks out to the fetch workers and folds every result into the table on this goroutine.
func (e *ChartEngine) collect(ctx context.Context, logger *log.Logger, progress chan<- ProgressUpdate, result *RunResult) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	results := e.startWorkers(ctx, cancel, logger, progress, result.Tasks)

	completed := 0
	for res := range results {
		completed++
		if res.Err != nil {
			if errors.Is(res.Err, shared.ErrCredential) || errors.Is(res.Err, context.Canceled) {
				continue
			}
			result.TasksFailed++
			e.metrics.Task(false)
			logger.Warn("task failed", "task", res.Task.String(), "error", res.Err)
			e.sendProgress(progress, taskFailedUpdate(completed, result.Tasks, res))
			continue
		}

		e.metrics.Task(true)
		for _, row := range res.Rows {
			result.Table.Add(row)
		}
		result.Rows += len(res.Rows)
		result.RowsFailed += res.RowsFailed
		e.sendProgress(progress, taskCompletedUpdate(completed, result.Tasks, res))
	}

	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

func (e *ChartEngine) recordStart(ctx context.Context, logger *log.Logger, run *models.Run) {
	if e.runs == nil {
		return
	}
	if err := e.runs.Create(ctx, run); err != nil {
		logger.Warn("failed to record run start", "error", err)
	}
}

func (e *ChartEngine) recordFinish(ctx context.Context, logger *log.Logger, run *models.Run, result *RunResult, err error) {
	outcome := string(models.RunCompleted)
	switch {
	case err != nil:
		outcome = string(models.RunFailed)
	case !result.Written:
		outcome = string(models.RunEmpty)
	}
	e.metrics.Run(outcome, result.FinishedAt.Sub(result.StartedAt).Seconds(), result.Table.Len())

	if e.runs == nil {
		return
	}

	finished := result.FinishedAt
	run.Status = models.RunStatus(outcome)
	run.TasksFailed = result.TasksFailed
	run.RowsTotal = result.Rows
	run.RowsFailed = result.RowsFailed
	run.FinishedAt = &finished
	if err != nil {
		run.ErrorMessage = err.Error()
	}

	// History is written even when the run context was cancelled.
	ctx = context.WithoutCancel(ctx)
	if ferr := e.runs.Finish(ctx, run); ferr != nil {
		logger.Warn("failed to record run finish", "error", ferr)
		return
	}
	if result.Written {
		if serr := e.runs.SaveRows(ctx, run.ID, result.Table.Rows()); serr != nil {
			logger.Warn("failed to record report rows", "error", serr)
		}
	}
}
