// package report folds enriched chart rows into per (genre, country, main genre) stream totals
package report

import (
	"context"
	"fmt"
	"slices"

	"github.com/desertthunder/chartx/internal/formatter"
	"github.com/desertthunder/chartx/internal/genres"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
	"github.com/desertthunder/chartx/internal/storage"
)

// Records expands a row into one contribution per genre tag. Tags are case-preserved; only the
// main genre lookup ignores case.
func Records(row models.ChartRow) []models.GenreRecord {
	records := make([]models.GenreRecord, 0, len(row.Genres))
	for _, tag := range row.Genres {
		records = append(records, models.GenreRecord{
			Genre:     tag,
			Country:   row.Country,
			MainGenre: genres.Classify(tag),
			Streams:   row.Streams,
		})
	}
	return records
}

// Table sums streams per [models.AggregateKey].
//
// A Table is not safe for concurrent use; the pipeline folds into it from a single goroutine.
type Table struct {
	sums map[models.AggregateKey]int64
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{sums: make(map[models.AggregateKey]int64)}
}

// Add folds every genre record of row into the table.
func (t *Table) Add(row models.ChartRow) {
	for _, rec := range Records(row) {
		t.AddRecord(rec)
	}
}

// AddRecord folds a single record into the table.
func (t *Table) AddRecord(rec models.GenreRecord) {
	t.sums[rec.Key()] += rec.Streams
}

// Merge folds every sum of other into t.
func (t *Table) Merge(other *Table) {
	for k, v := range other.sums {
		t.sums[k] += v
	}
}

// Get returns the sum for a key.
func (t *Table) Get(k models.AggregateKey) (int64, bool) {
	v, ok := t.sums[k]
	return v, ok
}

// Len returns the number of distinct keys.
func (t *Table) Len() int {
	return len(t.sums)
}

// Total returns the sum of all streams in the table.
func (t *Table) Total() int64 {
	var total int64
	for _, v := range t.sums {
		total += v
	}
	return total
}

// Rows flattens the table sorted by genre, then country, then main genre.
func (t *Table) Rows() []models.ReportRow {
	keys := make([]models.AggregateKey, 0, len(t.sums))
	for k := range t.sums {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b models.AggregateKey) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})

	rows := make([]models.ReportRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, models.ReportRow{Genre: k.Genre, Country: k.Country, MainGenre: k.MainGenre, Streams: t.sums[k]})
	}
	return rows
}

// Sink writes flattened reports to a destination understood by [storage.CreateWriter].
type Sink struct {
	URI string
}

// NewSink returns a sink for uri.
func NewSink(uri string) *Sink {
	return &Sink{URI: uri}
}

// Write replaces the destination with the header and rows. Failures wrap [shared.ErrOutputWrite].
func (s *Sink) Write(ctx context.Context, rows []models.ReportRow) (err error) {
	w, err := storage.CreateWriter(ctx, s.URI)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", shared.ErrOutputWrite, s.URI, err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %s: %w", shared.ErrOutputWrite, s.URI, cerr)
		}
	}()

	if err := formatter.WriteCSV(w, rows); err != nil {
		return fmt.Errorf("%w: %s: %w", shared.ErrOutputWrite, s.URI, err)
	}
	return nil
}
