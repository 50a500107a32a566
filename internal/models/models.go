// package models defines the data model for the chart genre pipeline
package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateLayout is the ISO calendar day format used for snapshot dates.
const DateLayout = "2006-01-02"

// ErrorGenre is the sentinel genre assigned to a row whose enrichment failed.
const ErrorGenre = "error"

// FetchTask identifies one daily chart snapshot.
type FetchTask struct {
	Country string
	Date    time.Time
}

// Day returns the task date formatted as YYYY-MM-DD.
func (t FetchTask) Day() string {
	return t.Date.Format(DateLayout)
}

func (t FetchTask) String() string {
	return t.Country + "/" + t.Day()
}

// ChartRow is one ranked track line from a snapshot.
//
// Genres is nil until enrichment; use [ChartRow.WithGenres] to derive an enriched copy.
type ChartRow struct {
	Position   int
	TrackName  string
	ArtistName string
	Streams    int64
	TrackURL   string
	Country    string
	Date       string
	Genres     []string
}

// WithGenres returns a copy of the row carrying its own copy of genres.
func (r ChartRow) WithGenres(genres []string) ChartRow {
	r.Genres = slices.Clone(genres)
	return r
}

// Failed returns a copy of the row tagged with the sentinel genre.
func (r ChartRow) Failed() ChartRow {
	return r.WithGenres([]string{ErrorGenre})
}

// TrackID returns the path segment after the last "/" of the track URL, without any query string.
func (r ChartRow) TrackID() (string, error) {
	u := r.TrackURL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	id := u[strings.LastIndex(u, "/")+1:]
	if id == "" {
		return "", fmt.Errorf("no track id in url %q", r.TrackURL)
	}
	return id, nil
}

// GenreRecord is a single (genre tag, row) contribution to the aggregate.
type GenreRecord struct {
	Genre     string
	Country   string
	MainGenre string
	Streams   int64
}

// Key returns the grouping key of the record.
func (g GenreRecord) Key() AggregateKey {
	return AggregateKey{Genre: g.Genre, Country: g.Country, MainGenre: g.MainGenre}
}

// AggregateKey groups summed streams. Values are case-preserved.
type AggregateKey struct {
	Genre     string
	Country   string
	MainGenre string
}

// Less orders keys by genre, then country, then main genre.
func (k AggregateKey) Less(o AggregateKey) bool {
	if k.Genre != o.Genre {
		return k.Genre < o.Genre
	}
	if k.Country != o.Country {
		return k.Country < o.Country
	}
	return k.MainGenre < o.MainGenre
}

// ReportRow is one line of the flattened output.
type ReportRow struct {
	Genre     string `json:"genre"`
	Country   string `json:"country"`
	MainGenre string `json:"main_genre"`
	Streams   int64  `json:"streams"`
}
