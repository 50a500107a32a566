package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
	tu "github.com/desertthunder/chartx/internal/testing"
)

func row(country string, streams int64, genres ...string) models.ChartRow {
	return models.ChartRow{Position: 1, TrackName: "t", ArtistName: "a", Country: country, Streams: streams}.WithGenres(genres)
}

func TestRecords(t *testing.T) {
	recs := Records(row("FR", 500, "Hard Rock", "french pop"))
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Genre != "Hard Rock" || recs[0].MainGenre != "rock" || recs[0].Streams != 500 {
		t.Errorf("unexpected first record %+v", recs[0])
	}
	if recs[1].MainGenre != "pop" || recs[1].Country != "FR" {
		t.Errorf("unexpected second record %+v", recs[1])
	}

	if got := Records(row("US", 100)); len(got) != 0 {
		t.Errorf("row without genres should contribute nothing, got %v", got)
	}
}

func TestTable(t *testing.T) {
	t.Run("sums per key", func(t *testing.T) {
		table := NewTable()
		table.Add(row("US", 1000, "pop"))
		table.Add(row("US", 250, "pop", "dance pop"))
		table.Add(row("FR", 500, "hard rock"))

		if v, _ := table.Get(models.AggregateKey{Genre: "pop", Country: "US", MainGenre: "pop"}); v != 1250 {
			t.Errorf("expected 1250 for US pop, got %d", v)
		}
		if table.Len() != 3 {
			t.Errorf("expected 3 keys, got %d", table.Len())
		}
	})

	t.Run("stream mass equals sum over rows of streams times tag count", func(t *testing.T) {
		rows := []models.ChartRow{
			row("US", 1000, "pop"),
			row("US", 300, "rap", "trap", "pop rap"),
			row("GB", 42),
			row("FR", 7, models.ErrorGenre),
		}

		table := NewTable()
		var want int64
		for _, r := range rows {
			table.Add(r)
			want += r.Streams * int64(len(r.Genres))
		}
		if table.Total() != want {
			t.Errorf("Total() = %d, want %d", table.Total(), want)
		}
	})

	t.Run("error rows are bucketed as others", func(t *testing.T) {
		table := NewTable()
		table.Add(row("DE", 90, models.ErrorGenre))
		if v, ok := table.Get(models.AggregateKey{Genre: "error", Country: "DE", MainGenre: "others"}); !ok || v != 90 {
			t.Errorf("expected (error, DE, others)=90, got %d %v", v, ok)
		}
	})

	t.Run("case preserved keys", func(t *testing.T) {
		table := NewTable()
		table.Add(row("US", 1, "Pop"))
		table.Add(row("US", 1, "pop"))
		if table.Len() != 2 {
			t.Errorf("expected distinct keys for Pop and pop, got %d", table.Len())
		}
	})

	t.Run("rows sorted", func(t *testing.T) {
		table := NewTable()
		table.Add(row("US", 1, "rock"))
		table.Add(row("FR", 2, "rock"))
		table.Add(row("US", 3, "pop"))

		rows := table.Rows()
		got := []string{}
		for _, r := range rows {
			got = append(got, r.Genre+"/"+r.Country)
		}
		want := []string{"pop/US", "rock/FR", "rock/US"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("Rows() order = %v, want %v", got, want)
			}
		}
	})

	t.Run("merge", func(t *testing.T) {
		a, b := NewTable(), NewTable()
		a.Add(row("US", 10, "pop"))
		b.Add(row("US", 5, "pop"))
		b.Add(row("FR", 1, "rock"))
		a.Merge(b)
		if a.Total() != 16 || a.Len() != 2 {
			t.Errorf("unexpected merge result total=%d len=%d", a.Total(), a.Len())
		}
	})
}

func TestSink(t *testing.T) {
	t.Run("writes header and rows", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "genres.csv")
		table := NewTable()
		table.Add(row("US", 1000, "pop"))
		table.Add(row("FR", 500, "hard rock"))

		if err := NewSink(path).Write(context.Background(), table.Rows()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		want := "genre,country,main_genre,streams\nhard rock,FR,rock,500\npop,US,pop,1000\n"
		if got := tu.MustReadFile(t, path); got != want {
			t.Errorf("unexpected report:\n%s\nwant:\n%s", got, want)
		}
	})

	t.Run("unwritable destination", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		os.WriteFile(blocker, []byte("x"), 0644)

		err := NewSink(filepath.Join(blocker, "genres.csv")).Write(context.Background(), nil)
		if !errors.Is(err, shared.ErrOutputWrite) {
			t.Errorf("expected ErrOutputWrite, got %v", err)
		}
	})
}
