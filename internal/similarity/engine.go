// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package similarity

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tastematch/internal/cache"
	"github.com/tomtom215/tastematch/internal/logging"
	"github.com/tomtom215/tastematch/internal/metrics"
	"github.com/tomtom215/tastematch/internal/models"
	"github.com/tomtom215/tastematch/internal/store"
	"github.com/tomtom215/tastematch/internal/tastemap"
)

// Engine orchestrates pairwise similarity computation. The metric functions
// themselves are pure; the engine adds taste-map retrieval, the live rating
// correlation, and result caching.
type Engine struct {
	aggregator *tastemap.Aggregator
	history    store.WatchHistoryStore
	cache      *cache.Cache
	cacheTTL   time.Duration
	logger     zerolog.Logger
}

// NewEngine wires an engine from its collaborators. A cacheTTL of 0 selects
// 24 hours.
func NewEngine(aggregator *tastemap.Aggregator, history store.WatchHistoryStore, c *cache.Cache, cacheTTL time.Duration) *Engine {
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	return &Engine{
		aggregator: aggregator,
		history:    history,
		cache:      c,
		cacheTTL:   cacheTTL,
		logger:     logging.WithComponent("similarity"),
	}
}

// ComputeSimilarity compares two users. When either taste map is unavailable
// the result is all zeros rather than an error. The rating correlation is
// recomputed live from shared completed records instead of reusing the cached
// rating distributions. OverallMatch is always derived last.
func (e *Engine) ComputeSimilarity(ctx context.Context, userA, userB string, includePatterns bool) (*models.SimilarityResult, error) {
	tmA, errA := e.aggregator.Get(ctx, userA)
	tmB, errB := e.aggregator.Get(ctx, userB)
	if errA != nil || errB != nil || tmA == nil || tmB == nil {
		e.logger.Warn().
			Str("user_a", userA).
			Str("user_b", userB).
			AnErr("error_a", errA).
			AnErr("error_b", errB).
			Msg("Taste map unavailable, returning zero similarity")
		metrics.SimilarityComputations.WithLabelValues("degenerate").Inc()
		return &models.SimilarityResult{}, nil
	}

	result := &models.SimilarityResult{
		TasteSimilarity:       CosineSimilarity(tmA.GenreProfile, tmB.GenreProfile),
		GenreRatingSimilarity: GenreRatingSimilarity(tmA.GenreProfile, tmB.GenreProfile),
		PersonOverlap: (PersonOverlap(tmA.PersonProfiles.Actors, tmB.PersonProfiles.Actors) +
			PersonOverlap(tmA.PersonProfiles.Directors, tmB.PersonProfiles.Directors)) / 2,
		RatingCorrelation: e.liveRatingCorrelation(ctx, userA, userB),
	}
	result.OverallMatch = ComputeOverallMatch(result.TasteSimilarity, result.RatingCorrelation, result.PersonOverlap)

	e.cache.SetWithTTL(cache.SimilarityKey(userA, userB), result.OverallMatch, e.cacheTTL)

	if includePatterns {
		patterns, err := e.ComputeRatingPatterns(ctx, userA, userB)
		if err != nil {
			return nil, err
		}
		result.RatingPatterns = patterns
	}

	metrics.SimilarityComputations.WithLabelValues("computed").Inc()
	return result, nil
}

// liveRatingCorrelation queries both users' completed records and correlates
// the ratings of shared content where both sides rated. Store failures
// degrade to a correlation of 0.
func (e *Engine) liveRatingCorrelation(ctx context.Context, userA, userB string) float64 {
	pairsA, pairsB, err := e.sharedRatings(ctx, userA, userB)
	if err != nil {
		e.logger.Warn().Err(err).
			Str("user_a", userA).
			Str("user_b", userB).
			Msg("Shared rating lookup failed, correlation degraded to 0")
		return 0
	}
	return PearsonCorrelation(pairsA, pairsB)
}

// sharedRatings returns paired rating arrays over the content both users
// completed and rated. Dropped records never participate.
func (e *Engine) sharedRatings(ctx context.Context, userA, userB string) ([]float64, []float64, error) {
	completedStatuses := []models.WatchStatus{models.StatusWatched, models.StatusRewatched}

	recsA, err := e.history.QueryByUser(ctx, userA, completedStatuses)
	if err != nil {
		return nil, nil, err
	}
	recsB, err := e.history.QueryByUser(ctx, userB, completedStatuses)
	if err != nil {
		return nil, nil, err
	}

	// Shared content is matched on the provider ID alone, same as the
	// pattern analysis join.
	byID := make(map[int64]models.WatchRecord, len(recsB))
	for _, rec := range recsB {
		byID[rec.ContentID] = rec
	}

	var ratingsA, ratingsB []float64
	for _, recA := range recsA {
		recB, ok := byID[recA.ContentID]
		if !ok {
			continue
		}
		if recA.UserRating == nil || recB.UserRating == nil {
			continue
		}
		ratingsA = append(ratingsA, *recA.UserRating)
		ratingsB = append(ratingsB, *recB.UserRating)
	}

	return ratingsA, ratingsB, nil
}
