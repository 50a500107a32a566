package tasks

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chartx/internal/charts"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
)

// startWorkers feeds tasks to e.opts.Workers fetch workers and returns the channel they report on.
// The channel is closed once the producer and every worker have exited.
func (e *ChartEngine) startWorkers(
	ctx context.Context,
	cancel context.CancelCauseFunc,
	logger *log.Logger,
	progress chan<- ProgressUpdate,
	total int,
) <-chan TaskResult {
	jobs := make(chan models.FetchTask)
	results := make(chan TaskResult, e.opts.Workers)

	var wg sync.WaitGroup
	for i := 0; i < e.opts.Workers; i++ {
		wg.Add(1)
		go e.fetchWorker(ctx, cancel, &wg, logger, jobs, results)
	}

	// the producer sends progress too, so it must finish before results is closed
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		step := 0
		for task := range charts.Tasks(e.opts.Countries, e.opts.Days, e.opts.Now()) {
			step++
			select {
			case <-ctx.Done():
				return
			case jobs <- task:
				e.sendProgress(progress, fetchTaskUpdate(step, total, task))
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// fetchWorker fetches and enriches tasks from jobs. A credential failure cancels the run.
func (e *ChartEngine) fetchWorker(
	ctx context.Context,
	cancel context.CancelCauseFunc,
	wg *sync.WaitGroup,
	logger *log.Logger,
	jobs <-chan models.FetchTask,
	results chan<- TaskResult,
) {
	defer wg.Done()

	for task := range jobs {
		if ctx.Err() != nil {
			return
		}

		res := e.processTask(ctx, logger, task)
		if errors.Is(res.Err, shared.ErrCredential) {
			logger.Error("credential failure during enrichment; aborting run", "task", task.String(), "error", res.Err)
			cancel(res.Err)
		}
		results <- res
	}
}

// processTask fetches one snapshot and enriches its rows in order.
func (e *ChartEngine) processTask(ctx context.Context, logger *log.Logger, task models.FetchTask) TaskResult {
	res := TaskResult{Task: task}
	logger = shared.TaskLogger(logger, task)

	rows, err := e.fetcher.Fetch(ctx, task)
	if err != nil {
		res.Err = err
		return res
	}
	logger.Debug("snapshot fetched", "rows", len(rows))

	res.Rows = make([]models.ChartRow, 0, len(rows))
	for _, row := range rows {
		enriched, err := e.enricher.Enrich(ctx, row)
		if err != nil {
			if errors.Is(err, shared.ErrCredential) {
				res.Err = err
				res.Rows = nil
				return res
			}
			if ctx.Err() != nil {
				res.Err = ctx.Err()
				res.Rows = nil
				return res
			}
			res.RowsFailed++
			logger.Warn("row enrichment failed", "position", row.Position, "track", row.TrackURL, "error", err)
		}
		res.Rows = append(res.Rows, enriched)
	}
	return res
}
