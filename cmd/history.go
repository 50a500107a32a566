package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/chartx/internal/formatter"
	"github.com/desertthunder/chartx/internal/genres"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/repositories"
	"github.com/desertthunder/chartx/internal/shared"
	"github.com/urfave/cli/v3"
)

type classification struct {
	Tag       string `json:"tag"`
	MainGenre string `json:"main_genre"`
}

type runJSON struct {
	ID          string             `json:"id"`
	Sequence    int                `json:"sequence"`
	Status      models.RunStatus   `json:"status"`
	Countries   []string           `json:"countries"`
	Days        int                `json:"days"`
	TasksTotal  int                `json:"tasks_total"`
	TasksFailed int                `json:"tasks_failed"`
	RowsTotal   int                `json:"rows_total"`
	RowsFailed  int                `json:"rows_failed"`
	OutputPath  string             `json:"output_path,omitempty"`
	Error       string             `json:"error,omitempty"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  *time.Time         `json:"finished_at,omitempty"`
	Rows        []models.ReportRow `json:"rows,omitempty"`
}

func toRunJSON(run *models.Run) runJSON {
	return runJSON{
		ID:          run.ID,
		Sequence:    run.Sequence,
		Status:      run.Status,
		Countries:   run.Countries,
		Days:        run.Days,
		TasksTotal:  run.TasksTotal,
		TasksFailed: run.TasksFailed,
		RowsTotal:   run.RowsTotal,
		RowsFailed:  run.RowsFailed,
		OutputPath:  run.OutputPath,
		Error:       run.ErrorMessage,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
	}
}

// Classify prints the main genre of each argument.
func (r *Runner) Classify(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("buckets") {
		for i, bucket := range genres.Buckets() {
			r.writePlain("%d. %s\n", i+1, bucket)
		}
		return nil
	}

	tags := cmd.Args().Slice()
	if len(tags) == 0 {
		return fmt.Errorf("%w: at least one genre tag", shared.ErrMissingArgument)
	}

	buckets := make([]string, len(tags))
	for i, tag := range tags {
		buckets[i] = genres.Classify(tag)
	}

	if cmd.Bool("json") {
		out := make([]classification, len(tags))
		for i := range tags {
			out[i] = classification{Tag: tags[i], MainGenre: buckets[i]}
		}
		return r.writeJSON(out, true)
	}

	return r.writePlain("%s\n", formatter.RenderClassification(tags, buckets))
}

func (r *Runner) openRuns(cmd *cli.Command) (*repositories.RunRepository, func() error, error) {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if config.Database.Path == "" {
		return nil, nil, fmt.Errorf("%w: database.path is empty", shared.ErrInvalidConfig)
	}

	db, err := r.openHistory(config)
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewRunRepository(db), db.Close, nil
}

// RunsList prints the most recent runs.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openRuns(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	runs, err := repo.List(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]runJSON, len(runs))
		for i, run := range runs {
			out[i] = toRunJSON(run)
		}
		return r.writeJSON(out, true)
	}

	return r.writePlain("%s\n", formatter.RenderRuns(runs))
}

// RunsShow prints one run with its stored report rows.
func (r *Runner) RunsShow(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openRuns(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	run, err := repo.Get(ctx, cmd.String("id"))
	if err != nil {
		return err
	}
	rows, err := repo.Rows(ctx, run.ID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := toRunJSON(run)
		out.Rows = rows
		return r.writeJSON(out, true)
	}

	r.writePlain("%s\n", formatter.RenderRun(run))
	if len(rows) > 0 {
		r.writePlain("%s\n", formatter.RenderReport(rows, int(cmd.Int("limit"))))
	}
	return nil
}
