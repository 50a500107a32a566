// Spotify Web API implementation of [Catalog]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/chartx/internal/metrics"
	"github.com/desertthunder/chartx/internal/shared"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	Album       SpotifyAlbum    `json:"album"`
	DurationMS  int             `json:"duration_ms"`
	Explicit    bool            `json:"explicit"`
	ExternalIDs externalIDs     `json:"external_ids"`
	Popularity  int             `json:"popularity"`
	URI         string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist. Genres is only populated by the artist endpoint.
type SpotifyArtist struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Genres []string       `json:"genres"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	TotalTracks int            `json:"total_tracks"`
	Images      []SpotifyImage `json:"images"`
	URI         string         `json:"uri"`
}

// StatusError is a non-2xx catalog response.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("spotify API error: %s: status %d", e.Endpoint, e.Code)
}

// Unwrap maps the status to a shared sentinel.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusUnauthorized:
		return shared.ErrUnauthorized
	case e.Code == http.StatusNotFound:
		return shared.ErrTrackNotFound
	case e.Code == http.StatusTooManyRequests || e.Code >= 500:
		return shared.ErrServiceUnavailable
	default:
		return shared.ErrAPIRequest
	}
}

// SpotifyOpts configures a [SpotifyService].
type SpotifyOpts struct {
	BaseURL    string // defaults to the public Web API
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
}

// SpotifyService implements [Catalog] against the Spotify Web API using bearer tokens from a [TokenManager].
type SpotifyService struct {
	tokens     *TokenManager
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// NewSpotifyService creates a new catalog client.
func NewSpotifyService(tokens *TokenManager, opts SpotifyOpts) *SpotifyService {
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = NewHTTPClient(0)
	}

	return &SpotifyService{
		tokens:     tokens,
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		metrics:    opts.Metrics,
	}
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Track retrieves a single track by ID.
func (s *SpotifyService) Track(ctx context.Context, trackID string) (*SpotifyTrack, error) {
	var track SpotifyTrack
	if err := s.doRequest(ctx, "tracks", "/tracks/"+url.PathEscape(trackID), &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// Artist retrieves a single artist by ID.
func (s *SpotifyService) Artist(ctx context.Context, artistID string) (*SpotifyArtist, error) {
	var artist SpotifyArtist
	if err := s.doRequest(ctx, "artists", "/artists/"+url.PathEscape(artistID), &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// ArtistIDs returns the IDs of the artists credited on a track.
func (s *SpotifyService) ArtistIDs(ctx context.Context, trackID string) ([]string, error) {
	track, err := s.Track(ctx, trackID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		if artist.ID != "" {
			ids = append(ids, artist.ID)
		}
	}
	return ids, nil
}

// Genres returns the genre tags of an artist.
func (s *SpotifyService) Genres(ctx context.Context, artistID string) ([]string, error) {
	artist, err := s.Artist(ctx, artistID)
	if err != nil {
		return nil, err
	}
	return artist.Genres, nil
}

// doRequest performs an authenticated GET. A 401 triggers one token refresh and a single retry.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint, path string, result any) error {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return err
	}

	err = s.get(ctx, endpoint, path, token, result)
	if !errors.Is(err, shared.ErrUnauthorized) {
		return err
	}

	token, err = s.tokens.Refresh(ctx)
	if err != nil {
		return err
	}
	return s.get(ctx, endpoint, path, token, result)
}

func (s *SpotifyService) get(ctx context.Context, endpoint, path, token string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.metrics.CatalogCall(endpoint, "0")
		return fmt.Errorf("%w: %s: %w", shared.ErrAPIRequest, endpoint, err)
	}
	defer resp.Body.Close()
	s.metrics.CatalogCall(endpoint, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %w", shared.ErrAPIRequest, endpoint, err)
	}
	return nil
}
