package formatter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/chartx/internal/models"
	th "github.com/desertthunder/chartx/internal/testing"
)

func sampleRows() []models.ReportRow {
	return []models.ReportRow{
		{Genre: "hard rock", Country: "FR", MainGenre: "rock", Streams: 500},
		{Genre: "pop", Country: "US", MainGenre: "pop", Streams: 1000},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleRows())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		want := "genre,country,main_genre,streams\nhard rock,FR,rock,500\npop,US,pop,1000\n"
		if string(data) != want {
			t.Errorf("unexpected output:\n%s\nwant:\n%s", data, want)
		}
	})

	t.Run("ExportToCSV Empty", func(t *testing.T) {
		data, err := ExportToCSV(nil)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if string(data) != "genre,country,main_genre,streams\n" {
			t.Errorf("expected header only, got %q", data)
		}
	})

	t.Run("Fields Are Not Quoted", func(t *testing.T) {
		rows := []models.ReportRow{{Genre: `"weird" tag`, Country: "US", MainGenre: "others", Streams: 1}}
		data, _ := ExportToCSV(rows)
		if !strings.Contains(string(data), "\"weird\" tag,US,others,1\n") {
			t.Errorf("expected raw field, got %q", data)
		}
	})

	t.Run("WriteCSV Failing Writer", func(t *testing.T) {
		if err := WriteCSV(&th.FWriter{}, sampleRows()); !errors.Is(err, th.ErrWriteFailed) {
			t.Errorf("expected ErrWriteFailed, got %v", err)
		}
	})
}

func TestRender(t *testing.T) {
	t.Run("RenderReport", func(t *testing.T) {
		out := RenderReport(sampleRows(), 0)
		for _, want := range []string{"Genre", "Main Genre", "hard rock", "1000"} {
			if !strings.Contains(out, want) {
				t.Errorf("table missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("RenderReport Limit", func(t *testing.T) {
		out := RenderReport(sampleRows(), 1)
		if strings.Contains(out, "1000") {
			t.Errorf("limited table should not show second row:\n%s", out)
		}
		if !strings.Contains(out, "1 more rows") {
			t.Errorf("expected truncation note:\n%s", out)
		}
	})

	t.Run("RenderClassification", func(t *testing.T) {
		out := RenderClassification([]string{"hard rock"}, []string{"rock"})
		if !strings.Contains(out, "hard rock") || !strings.Contains(out, "rock") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("RenderRuns", func(t *testing.T) {
		if out := RenderRuns(nil); !strings.Contains(out, "No runs recorded") {
			t.Errorf("expected empty message, got %q", out)
		}

		started := time.Date(2021, 1, 15, 10, 0, 0, 0, time.UTC)
		finished := started.Add(90 * time.Second)
		runs := []*models.Run{{
			ID: "run-1", Sequence: 3, Status: models.RunCompleted,
			TasksTotal: 4, TasksFailed: 1, RowsTotal: 10, RowsFailed: 2,
			OutputPath: "./genres.csv", StartedAt: started, FinishedAt: &finished,
		}}
		out := RenderRuns(runs)
		for _, want := range []string{"run-1", "completed", "3/4", "8/10", "1m30s"} {
			if !strings.Contains(out, want) {
				t.Errorf("listing missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("RenderRun", func(t *testing.T) {
		run := &models.Run{
			ID: "run-2", Sequence: 1, Status: models.RunFailed, Countries: []string{"US", "FR"}, Days: 7,
			ErrorMessage: "credential acquisition failed", StartedAt: time.Now(),
		}
		out := RenderRun(run)
		for _, want := range []string{"Run #1", "US, FR", "credential acquisition failed"} {
			if !strings.Contains(out, want) {
				t.Errorf("details missing %q:\n%s", want, out)
			}
		}
	})
}
