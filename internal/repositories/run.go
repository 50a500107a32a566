package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
)

const runColumns = `id, sequence, status, countries, days, tasks_total, tasks_failed, rows_total, rows_failed,
	output_path, error_message, started_at, finished_at`

// RunRepository persists [models.Run] records and their report rows.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run with a generated sequence. A run without an ID gets a new one.
func (r *RunRepository) Create(ctx context.Context, run *models.Run) error {
	if run.ID == "" {
		run.ID = shared.GenerateID()
	}
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	run.Sequence = sequence

	query := `
		INSERT INTO runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		run.ID,
		run.Sequence,
		run.Status,
		strings.Join(run.Countries, ","),
		run.Days,
		run.TasksTotal,
		run.TasksFailed,
		run.RowsTotal,
		run.RowsFailed,
		run.OutputPath,
		nullString(run.ErrorMessage),
		run.StartedAt.UTC(),
		nullTime(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Finish stores the final status and counters of a run.
func (r *RunRepository) Finish(ctx context.Context, run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE runs
		SET status = ?, tasks_total = ?, tasks_failed = ?, rows_total = ?, rows_failed = ?,
			output_path = ?, error_message = ?, finished_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		run.Status,
		run.TasksTotal,
		run.TasksFailed,
		run.RowsTotal,
		run.RowsFailed,
		run.OutputPath,
		nullString(run.ErrorMessage),
		nullTime(run.FinishedAt),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID)
	}

	return nil
}

// Get retrieves a run by ID or by its sequence number.
func (r *RunRepository) Get(ctx context.Context, idOrSequence string) (*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ? OR CAST(sequence AS TEXT) = ?`
	return r.scan(r.db.QueryRowContext(ctx, query, idOrSequence, idOrSequence))
}

// List returns the most recent runs first. limit <= 0 returns every run.
func (r *RunRepository) List(ctx context.Context, limit int) ([]*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY sequence DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// SaveRows replaces the stored report rows of a run.
func (r *RunRepository) SaveRows(ctx context.Context, runID string, rows []models.ReportRow) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE id = ?", runID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to look up run: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, runID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM report_rows WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to clear report rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO report_rows (run_id, genre, country, main_genre, streams)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, runID, row.Genre, row.Country, row.MainGenre, row.Streams); err != nil {
			return fmt.Errorf("failed to insert report row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report rows: %w", err)
	}
	return nil
}

// Rows returns the stored report rows of a run sorted by genre, country, main genre.
func (r *RunRepository) Rows(ctx context.Context, runID string) ([]models.ReportRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT genre, country, main_genre, streams
		FROM report_rows
		WHERE run_id = ?
		ORDER BY genre, country, main_genre
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query report rows: %w", err)
	}
	defer rows.Close()

	var out []models.ReportRow
	for rows.Next() {
		var row models.ReportRow
		if err := rows.Scan(&row.Genre, &row.Country, &row.MainGenre, &row.Streams); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// Delete removes a run and its report rows.
func (r *RunRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scan reads one run from a [sql.Row] or [sql.Rows]
func (r *RunRepository) scan(s scanner) (*models.Run, error) {
	var (
		run        models.Run
		status     string
		countries  string
		errMessage sql.NullString
		finishedAt sql.NullTime
	)

	err := s.Scan(
		&run.ID, &run.Sequence, &status, &countries, &run.Days,
		&run.TasksTotal, &run.TasksFailed, &run.RowsTotal, &run.RowsFailed,
		&run.OutputPath, &errMessage, &run.StartedAt, &finishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Status = models.RunStatus(status)
	run.Countries = shared.SplitList(countries)
	run.ErrorMessage = errMessage.String
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	return &run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
