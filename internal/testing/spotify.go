package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// ChartHeader is the two line preamble of a snapshot payload.
const ChartHeader = `,,,"Note that these figures are generated using a formula that protects against any artificial inflation of chart positions.",
Position,"Track Name",Artist,Streams,URL
`

// FakeSpotify serves the token endpoint, the catalog endpoints and chart snapshots from one [httptest.Server].
//
// Fields may be set after construction but before the first request.
type FakeSpotify struct {
	Server *httptest.Server

	// Tracks maps track ID to credited artist IDs.
	Tracks map[string][]string
	// Artists maps artist ID to genre tags.
	Artists map[string][]string
	// Charts maps "country/YYYY-MM-DD" to a snapshot payload. Missing keys serve [ChartHeader] only.
	Charts map[string]string
	// ChartStatus maps "country/YYYY-MM-DD" to a forced status code.
	ChartStatus map[string]int
	// TrackStatus maps track ID to a forced status code.
	TrackStatus map[string]int

	// TokenStatus forces the token endpoint to answer with this code when non-zero.
	TokenStatus int
	// FailTokensAfter makes every exchange after the first N fail with 401. Zero disables it.
	FailTokensAfter int
	// Unauthorized is the number of catalog requests answered 401 before normal service.
	Unauthorized int

	mu              sync.Mutex
	tokensIssued    int
	tokenRequests   int
	catalogRequests int
}

// NewFakeSpotify starts the fake and closes it when the test ends.
func NewFakeSpotify(t *testing.T) *FakeSpotify {
	t.Helper()
	f := &FakeSpotify{
		Tracks:      map[string][]string{},
		Artists:     map[string][]string{},
		Charts:      map[string]string{},
		ChartStatus: map[string]int{},
		TrackStatus: map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token", f.token)
	mux.HandleFunc("GET /v1/tracks/{id}", f.track)
	mux.HandleFunc("GET /v1/artists/{id}", f.artist)
	mux.HandleFunc("GET /charts/{country}/{date}", f.chart)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeSpotify) TokenURL() string { return f.Server.URL + "/api/token" }
func (f *FakeSpotify) APIURL() string   { return f.Server.URL + "/v1" }

// ChartTemplate returns a snapshot URL template with $1 country and $2 date markers.
func (f *FakeSpotify) ChartTemplate() string {
	return f.Server.URL + "/charts/$1/$2"
}

// TrackURL returns a chart-style URL for a track ID.
func (f *FakeSpotify) TrackURL(id string) string {
	return "https://open.spotify.com/track/" + id
}

// TokenRequests returns how many token exchanges were attempted.
func (f *FakeSpotify) TokenRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenRequests
}

// CatalogRequests returns how many track and artist lookups were served.
func (f *FakeSpotify) CatalogRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.catalogRequests
}

func (f *FakeSpotify) token(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenRequests++

	if _, _, ok := r.BasicAuth(); !ok {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
		return
	}
	if f.TokenStatus != 0 || (f.FailTokensAfter > 0 && f.tokensIssued >= f.FailTokensAfter) {
		code := f.TokenStatus
		if code == 0 {
			code = http.StatusUnauthorized
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write([]byte(`{"error":"invalid_client"}`))
		return
	}

	f.tokensIssued++
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"access_token": fmt.Sprintf("token-%d", f.tokensIssued),
		"token_type":   "Bearer",
		"expires_in":   3600,
	})
}

// authorize reports whether the catalog request may proceed, answering 401 otherwise.
func (f *FakeSpotify) authorize(w http.ResponseWriter, r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalogRequests++

	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer token-") || f.Unauthorized > 0 {
		if f.Unauthorized > 0 {
			f.Unauthorized--
		}
		http.Error(w, `{"error":{"status":401,"message":"The access token expired"}}`, http.StatusUnauthorized)
		return false
	}
	return true
}

func (f *FakeSpotify) track(w http.ResponseWriter, r *http.Request) {
	if !f.authorize(w, r) {
		return
	}
	id := r.PathValue("id")
	if code := f.TrackStatus[id]; code != 0 {
		http.Error(w, `{"error":{"status":`+fmt.Sprint(code)+`}}`, code)
		return
	}
	artistIDs, ok := f.Tracks[id]
	if !ok {
		http.Error(w, `{"error":{"status":404,"message":"Not found."}}`, http.StatusNotFound)
		return
	}

	artists := make([]map[string]string, 0, len(artistIDs))
	for _, a := range artistIDs {
		artists = append(artists, map[string]string{"id": a, "name": a})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"id": id, "name": id, "artists": artists})
}

func (f *FakeSpotify) artist(w http.ResponseWriter, r *http.Request) {
	if !f.authorize(w, r) {
		return
	}
	id := r.PathValue("id")
	genres, ok := f.Artists[id]
	if !ok {
		http.Error(w, `{"error":{"status":404,"message":"Not found."}}`, http.StatusNotFound)
		return
	}
	if genres == nil {
		genres = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"id": id, "name": id, "genres": genres})
}

func (f *FakeSpotify) chart(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("country") + "/" + r.PathValue("date")
	if code := f.ChartStatus[key]; code != 0 {
		http.Error(w, "unavailable", code)
		return
	}
	payload, ok := f.Charts[key]
	if !ok {
		payload = ChartHeader
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Write([]byte(payload))
}

// ChartLine formats one snapshot data line.
func ChartLine(position int, track, artist string, streams int64, url string) string {
	return fmt.Sprintf("%d,\"%s\",%s,%d,%s\n", position, track, artist, streams, url)
}
