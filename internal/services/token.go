package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/desertthunder/chartx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenManagerOpts configures a [TokenManager].
type TokenManagerOpts struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	HTTPClient   *http.Client

	// OnRefresh is called after every successful exchange.
	OnRefresh func(Credential)
}

// TokenManager performs the client-credentials exchange and caches the resulting token.
//
// It is safe for concurrent use.
type TokenManager struct {
	config     *clientcredentials.Config
	httpClient *http.Client
	onRefresh  func(Credential)

	mu    sync.Mutex
	token *oauth2.Token
}

// NewTokenManager creates a [TokenManager]. The token URL defaults to the Spotify accounts endpoint.
func NewTokenManager(opts TokenManagerOpts) (*TokenManager, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = NewHTTPClient(0)
	}

	return &TokenManager{
		config: &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: opts.HTTPClient,
		onRefresh:  opts.OnRefresh,
	}, nil
}

// Acquire always performs a fresh exchange and caches the result. Failures wrap [shared.ErrCredential].
func (m *TokenManager) Acquire(ctx context.Context) (Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquire(ctx)
}

// Token returns the cached access token, acquiring one if none is cached or it has expired.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token.Valid() {
		return m.token.AccessToken, nil
	}

	cred, err := m.acquire(ctx)
	if err != nil {
		return "", err
	}
	return cred.AccessToken, nil
}

// Refresh discards the cached token and acquires a new one.
func (m *TokenManager) Refresh(ctx context.Context) (string, error) {
	cred, err := m.Acquire(ctx)
	if err != nil {
		return "", err
	}
	return cred.AccessToken, nil
}

// acquire must be called with mu held.
func (m *TokenManager) acquire(ctx context.Context) (Credential, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)

	token, err := m.config.Token(ctx)
	if err != nil {
		m.token = nil
		return Credential{}, fmt.Errorf("%w: %w", shared.ErrCredential, err)
	}
	if token.AccessToken == "" {
		m.token = nil
		return Credential{}, fmt.Errorf("%w: empty access token", shared.ErrCredential)
	}

	m.token = token
	cred := Credential{AccessToken: token.AccessToken}
	if !token.Expiry.IsZero() {
		cred.ExpiresIn = time.Until(token.Expiry).Round(time.Second)
	}

	if m.onRefresh != nil {
		m.onRefresh(cred)
	}
	return cred, nil
}
