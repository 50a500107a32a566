// Package services resolves chart tracks to genre tags through a music catalog.
//
// # Credentials
//
// [TokenManager] performs the OAuth2 client-credentials exchange ([clientcredentials.Config]) and caches the
// bearer token. [TokenManager.Refresh] forces a new exchange; every failure wraps [shared.ErrCredential].
//
// # Catalog
//
// [SpotifyService] implements [Catalog] with two lookups per track:
//   - GET /tracks/{id} for the credited artist IDs
//   - GET /artists/{id} for each artist's genre tags
//
// A 401 answer causes exactly one [TokenManager.Refresh] and one retry of the same request. A second 401
// surfaces as [shared.ErrUnauthorized]; a failed refresh surfaces as [shared.ErrCredential].
//
// # Error Handling
//
// Non-2xx answers are returned as [*StatusError], which unwraps to:
//   - [shared.ErrUnauthorized] : 401
//   - [shared.ErrTrackNotFound] : 404
//   - [shared.ErrServiceUnavailable] : 429 and 5xx
//   - [shared.ErrAPIRequest] : anything else
package services
