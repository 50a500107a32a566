package charts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
)

const (
	headerLines = 2
	fieldCount  = 5
)

// Parse reads a snapshot payload into chart rows stamped with the task's country and date.
//
// A payload that ends inside the header yields no rows and no error.
func Parse(r io.Reader, task models.FetchTask) ([]models.ChartRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	for i := 0; i < headerLines; i++ {
		if _, err := reader.Read(); errors.Is(err, io.EOF) {
			return nil, nil
		} else if err != nil {
			return nil, fmt.Errorf("%w: header: %v", shared.ErrMalformedChart, err)
		}
	}

	var rows []models.ChartRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrMalformedChart, err)
		}

		line, _ := reader.FieldPos(0)
		row, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", shared.ErrMalformedChart, line, err)
		}
		row.Country = task.Country
		row.Date = task.Day()
		rows = append(rows, row)
	}

	return rows, nil
}

func parseRecord(record []string) (models.ChartRow, error) {
	if len(record) != fieldCount {
		return models.ChartRow{}, fmt.Errorf("expected %d fields, got %d", fieldCount, len(record))
	}
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	position, err := strconv.Atoi(record[0])
	if err != nil {
		return models.ChartRow{}, fmt.Errorf("rank %q: %w", record[0], err)
	}
	if position < 1 {
		return models.ChartRow{}, fmt.Errorf("rank %d is below 1", position)
	}

	streams, err := strconv.ParseInt(record[3], 10, 64)
	if err != nil {
		return models.ChartRow{}, fmt.Errorf("streams %q: %w", record[3], err)
	}
	if streams < 0 {
		return models.ChartRow{}, fmt.Errorf("streams %d is negative", streams)
	}

	return models.ChartRow{
		Position:   position,
		TrackName:  record[1],
		ArtistName: record[2],
		Streams:    streams,
		TrackURL:   record[4],
	}, nil
}
