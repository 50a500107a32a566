// package services defines the catalog and credential clients used to enrich chart rows
package services

import (
	"context"
	"net/http"
	"time"
)

// DefaultTimeout bounds every catalog and token request when no client is supplied.
const DefaultTimeout = 30 * time.Second

// NewHTTPClient returns a client whose requests are bounded by timeout, or [DefaultTimeout] when timeout <= 0.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Catalog resolves tracks to artists and artists to genre tags.
type Catalog interface {
	// ArtistIDs returns the artist IDs credited on a track, in catalog order.
	ArtistIDs(ctx context.Context, trackID string) ([]string, error)

	// Genres returns the genre tags of an artist. The list may be empty.
	Genres(ctx context.Context, artistID string) ([]string, error)

	// Name returns the name of the catalog (e.g., "Spotify")
	Name() string
}

// CredentialSource obtains bearer credentials for a [Catalog].
type CredentialSource interface {
	Acquire(ctx context.Context) (Credential, error)
}

// Credential is a bearer token and how long it stays valid. ExpiresIn is zero when the issuer gave no lifetime.
type Credential struct {
	AccessToken string
	ExpiresIn   time.Duration
}
