package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/chartx/internal/metrics"
	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/services"
	"github.com/desertthunder/chartx/internal/shared"
	"golang.org/x/time/rate"
)

// Enricher attaches catalog genre tags to chart rows.
//
// All rows share one limiter, so the call budget holds no matter how many fetch workers call Enrich.
type Enricher struct {
	catalog services.Catalog
	limiter *rate.Limiter
	metrics *metrics.Metrics
}

// NewEnricher creates an [Enricher] that starts at most one row per interval.
func NewEnricher(catalog services.Catalog, interval time.Duration, m *metrics.Metrics) *Enricher {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Enricher{catalog: catalog, limiter: rate.NewLimiter(limit, 1), metrics: m}
}

// Enrich returns a copy of row carrying the genre tags of every credited artist, in lookup order
// and with duplicates kept. The input row is never modified.
//
// On failure the copy carries the single sentinel genre [models.ErrorGenre] and the error wraps
// [shared.ErrRowEnrichment]. A [shared.ErrCredential] failure is returned unwrapped so the caller
// can abort the run.
func (e *Enricher) Enrich(ctx context.Context, row models.ChartRow) (models.ChartRow, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		e.metrics.Row(false)
		return row.Failed(), fmt.Errorf("%w: %w", shared.ErrRowEnrichment, err)
	}

	tags, err := e.lookup(ctx, row)
	if err != nil {
		e.metrics.Row(false)
		if errors.Is(err, shared.ErrCredential) {
			return row.Failed(), err
		}
		return row.Failed(), fmt.Errorf("%w: %s: %w", shared.ErrRowEnrichment, row.TrackURL, err)
	}

	e.metrics.Row(true)
	return row.WithGenres(tags), nil
}

func (e *Enricher) lookup(ctx context.Context, row models.ChartRow) ([]string, error) {
	trackID, err := row.TrackID()
	if err != nil {
		return nil, err
	}

	artistIDs, err := e.catalog.ArtistIDs(ctx, trackID)
	if err != nil {
		return nil, err
	}

	tags := []string{}
	for _, artistID := range artistIDs {
		genres, err := e.catalog.Genres(ctx, artistID)
		if err != nil {
			return nil, err
		}
		tags = append(tags, genres...)
	}
	return tags, nil
}
