package models

import (
	"testing"
	"time"
)

func TestChartRow(t *testing.T) {
	t.Run("TrackID", func(t *testing.T) {
		tests := []struct {
			url     string
			want    string
			wantErr bool
		}{
			{url: "https://open.spotify.com/track/4iV5W9uYEdYUVa79Axb7Rh", want: "4iV5W9uYEdYUVa79Axb7Rh"},
			{url: "https://open.spotify.com/track/abc?si=123", want: "abc"},
			{url: "abc", want: "abc"},
			{url: "https://open.spotify.com/track/", wantErr: true},
			{url: "", wantErr: true},
		}
		for _, tt := range tests {
			t.Run(tt.url, func(t *testing.T) {
				got, err := ChartRow{TrackURL: tt.url}.TrackID()
				if (err != nil) != tt.wantErr {
					t.Fatalf("TrackID() error = %v, wantErr %v", err, tt.wantErr)
				}
				if got != tt.want {
					t.Errorf("TrackID() = %q, want %q", got, tt.want)
				}
			})
		}
	})

	t.Run("WithGenres does not alias", func(t *testing.T) {
		genres := []string{"pop", "dance pop"}
		row := ChartRow{Streams: 10}
		enriched := row.WithGenres(genres)
		genres[0] = "changed"

		if row.Genres != nil {
			t.Error("original row should be untouched")
		}
		if enriched.Genres[0] != "pop" {
			t.Errorf("enriched row should own its genres, got %v", enriched.Genres)
		}
		if enriched.Streams != 10 {
			t.Errorf("streams must be preserved, got %d", enriched.Streams)
		}
	})

	t.Run("Failed", func(t *testing.T) {
		row := ChartRow{Genres: []string{"pop"}}.Failed()
		if len(row.Genres) != 1 || row.Genres[0] != ErrorGenre {
			t.Errorf("expected sentinel genre, got %v", row.Genres)
		}
	})
}

func TestFetchTask(t *testing.T) {
	task := FetchTask{Country: "US", Date: time.Date(2021, 2, 3, 0, 0, 0, 0, time.UTC)}
	if task.Day() != "2021-02-03" {
		t.Errorf("Day() = %s", task.Day())
	}
	if task.String() != "US/2021-02-03" {
		t.Errorf("String() = %s", task.String())
	}
}

func TestAggregateKeyLess(t *testing.T) {
	a := AggregateKey{Genre: "pop", Country: "FR", MainGenre: "pop"}
	b := AggregateKey{Genre: "pop", Country: "US", MainGenre: "pop"}
	c := AggregateKey{Genre: "rock", Country: "AR", MainGenre: "rock"}

	if !a.Less(b) || b.Less(a) {
		t.Error("country should break genre ties")
	}
	if !b.Less(c) {
		t.Error("genre should order first")
	}
	if a.Less(a) {
		t.Error("key must not be less than itself")
	}
}

func TestRunValidate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		run     Run
		wantErr bool
	}{
		{name: "valid", run: Run{ID: "x", Status: RunRunning, StartedAt: now}},
		{name: "missing id", run: Run{Status: RunRunning, StartedAt: now}, wantErr: true},
		{name: "bad status", run: Run{ID: "x", Status: "paused", StartedAt: now}, wantErr: true},
		{name: "missing start", run: Run{ID: "x", Status: RunFailed}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
