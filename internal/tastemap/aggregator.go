// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

// Package tastemap builds per-user taste profiles from completed watch
// history enriched with external metadata.
package tastemap

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tastematch/internal/cache"
	"github.com/tomtom215/tastematch/internal/logging"
	"github.com/tomtom215/tastematch/internal/metadata"
	"github.com/tomtom215/tastematch/internal/metrics"
	"github.com/tomtom215/tastematch/internal/models"
	"github.com/tomtom215/tastematch/internal/store"
)

// Config tunes profile computation.
type Config struct {
	// RecordCap bounds how many records are enriched with metadata per
	// profile. Heavy users get approximate profiles; this is a deliberate
	// scalability trade-off, not a bug.
	RecordCap int

	// BatchSize and BatchDelay shape the parallel metadata enrichment.
	BatchSize  int
	BatchDelay time.Duration

	// TTL is the cache lifetime of a computed profile.
	TTL time.Duration
}

// DefaultConfig returns the standard computation settings.
func DefaultConfig() Config {
	return Config{
		RecordCap:  50,
		BatchSize:  5,
		BatchDelay: 200 * time.Millisecond,
		TTL:        24 * time.Hour,
	}
}

// Aggregator computes and caches taste maps.
type Aggregator struct {
	history  store.WatchHistoryStore
	provider metadata.Provider
	cache    *cache.Cache
	cfg      Config
	logger   zerolog.Logger
}

// NewAggregator wires an aggregator from its collaborators.
func NewAggregator(history store.WatchHistoryStore, provider metadata.Provider, c *cache.Cache, cfg Config) *Aggregator {
	if cfg.RecordCap <= 0 {
		cfg.RecordCap = DefaultConfig().RecordCap
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	return &Aggregator{
		history:  history,
		provider: provider,
		cache:    c,
		cfg:      cfg,
		logger:   logging.WithComponent("tastemap"),
	}
}

// Get returns the user's taste map, serving from cache when possible.
func (a *Aggregator) Get(ctx context.Context, userID string) (*models.TasteMap, error) {
	if cached, ok := a.cache.Get(cache.TasteMapKey(userID)); ok {
		if tm, ok := cached.(*models.TasteMap); ok {
			metrics.CacheOperations.WithLabelValues("taste_map", "hit").Inc()
			metrics.TasteMapComputations.WithLabelValues("cached").Inc()
			return tm, nil
		}
	}
	metrics.CacheOperations.WithLabelValues("taste_map", "miss").Inc()

	return a.Compute(ctx, userID)
}

// Compute builds the taste map from stored records, bypassing the cache on
// read but writing the fresh result through on success.
func (a *Aggregator) Compute(ctx context.Context, userID string) (*models.TasteMap, error) {
	start := time.Now()
	defer func() {
		metrics.TasteMapDuration.Observe(time.Since(start).Seconds())
	}()

	completed, err := a.history.QueryByUser(ctx, userID, []models.WatchStatus{
		models.StatusWatched,
		models.StatusRewatched,
	})
	if err != nil {
		metrics.TasteMapComputations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load watch history for %s: %w", userID, err)
	}

	if len(completed) == 0 {
		tm := models.EmptyTasteMap(time.Now())
		a.writeCache(userID, tm)
		metrics.TasteMapComputations.WithLabelValues("empty").Inc()
		return tm, nil
	}

	// Every profile except behavior is computed over the capped set, so the
	// capped aggregations stay mutually consistent for heavy users.
	capped := completed
	if len(capped) > a.cfg.RecordCap {
		capped = capped[:a.cfg.RecordCap]
	}
	enriched := metadata.EnrichRecords(ctx, a.provider, capped, a.cfg.BatchSize, a.cfg.BatchDelay)

	allRecords, err := a.history.QueryByUser(ctx, userID, nil)
	if err != nil {
		metrics.TasteMapComputations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load full record set for %s: %w", userID, err)
	}

	genreProfile := a.computeGenreProfile(enriched)
	distribution := computeRatingDistribution(capped)

	tm := &models.TasteMap{
		GenreProfile:       genreProfile,
		PersonProfiles:     a.computePersonProfiles(enriched),
		TypeProfile:        computeTypeProfile(capped),
		RatingDistribution: distribution,
		AverageRating:      computeAverageRating(capped),
		BehaviorProfile:    computeBehaviorProfile(allRecords),
		ComputedMetrics:    computeDerivedMetrics(genreProfile, distribution),
		UpdatedAt:          time.Now(),
	}

	a.writeCache(userID, tm)
	metrics.TasteMapComputations.WithLabelValues("computed").Inc()

	a.logger.Debug().
		Str("user_id", userID).
		Int("completed_records", len(completed)).
		Int("enriched_records", len(enriched)).
		Int("genres", len(tm.GenreProfile)).
		Msg("Taste map computed")

	return tm, nil
}

// Invalidate drops the user's cached taste map.
func (a *Aggregator) Invalidate(userID string) {
	a.cache.Delete(cache.TasteMapKey(userID))
}

// writeCache stores the full map plus the genre and person sub-profiles.
// Cache failures cannot occur here, but the writes are still best-effort by
// contract: nothing downstream depends on them succeeding.
func (a *Aggregator) writeCache(userID string, tm *models.TasteMap) {
	a.cache.SetWithTTL(cache.TasteMapKey(userID), tm, a.cfg.TTL)
	a.cache.SetWithTTL("genre-profile:"+userID, tm.GenreProfile, a.cfg.TTL)
	a.cache.SetWithTTL("person-profiles:"+userID, tm.PersonProfiles, a.cfg.TTL)
}

// ratingAccumulator tracks a running effective-rating sum per key.
type ratingAccumulator struct {
	sum   float64
	count int
}

// profileFromTotals converts accumulated sums into 0-100 scores:
// round(average x 10).
func profileFromTotals(totals map[string]*ratingAccumulator) map[string]float64 {
	profile := make(map[string]float64, len(totals))
	for key, acc := range totals {
		if acc.count == 0 {
			continue
		}
		profile[key] = math.Round(acc.sum / float64(acc.count) * 10)
	}
	return profile
}

func (a *Aggregator) computeGenreProfile(enriched []metadata.EnrichedRecord) map[string]float64 {
	totals := make(map[string]*ratingAccumulator)
	for _, er := range enriched {
		if er.Meta == nil {
			continue
		}
		rating := er.Record.EffectiveRating()
		// A record contributes to every genre it is tagged with.
		for _, g := range er.Meta.Genres {
			acc, ok := totals[g.Name]
			if !ok {
				acc = &ratingAccumulator{}
				totals[g.Name] = acc
			}
			acc.sum += rating
			acc.count++
		}
	}
	return profileFromTotals(totals)
}

func (a *Aggregator) computePersonProfiles(enriched []metadata.EnrichedRecord) models.PersonProfiles {
	actorTotals := make(map[string]*ratingAccumulator)
	directorTotals := make(map[string]*ratingAccumulator)

	for _, er := range enriched {
		if er.Meta == nil {
			continue
		}
		rating := er.Record.EffectiveRating()
		for _, member := range er.Meta.Cast {
			acc, ok := actorTotals[member.Name]
			if !ok {
				acc = &ratingAccumulator{}
				actorTotals[member.Name] = acc
			}
			acc.sum += rating
			acc.count++
		}
		for _, name := range er.Meta.Directors() {
			acc, ok := directorTotals[name]
			if !ok {
				acc = &ratingAccumulator{}
				directorTotals[name] = acc
			}
			acc.sum += rating
			acc.count++
		}
	}

	return models.PersonProfiles{
		Actors:    profileFromTotals(actorTotals),
		Directors: profileFromTotals(directorTotals),
	}
}

func computeTypeProfile(records []models.WatchRecord) models.TypeProfile {
	if len(records) == 0 {
		return models.TypeProfile{}
	}

	movies := 0
	for _, rec := range records {
		if rec.MediaType == models.MediaTypeMovie {
			movies++
		}
	}

	total := float64(len(records))
	return models.TypeProfile{
		MoviePercent: math.Round(float64(movies) / total * 100),
		TVPercent:    math.Round(float64(len(records)-movies) / total * 100),
	}
}

func computeRatingDistribution(records []models.WatchRecord) models.RatingDistribution {
	if len(records) == 0 {
		return models.RatingDistribution{}
	}

	var high, medium, low int
	for _, rec := range records {
		// Everything below 5 is low, including degenerate ratings under 1.
		switch r := rec.EffectiveRating(); {
		case r >= 8:
			high++
		case r >= 5:
			medium++
		default:
			low++
		}
	}

	total := float64(len(records))
	return models.RatingDistribution{
		HighPercent:   math.Round(float64(high) / total * 100),
		MediumPercent: math.Round(float64(medium) / total * 100),
		LowPercent:    math.Round(float64(low) / total * 100),
	}
}

// computeAverageRating averages user ratings when any exist. With zero user
// ratings it averages reference ratings over ALL records instead, switching
// the denominator set. The asymmetry is long-standing observed behavior and
// is covered by tests; do not unify the two paths. The result is rounded to
// one decimal.
func computeAverageRating(records []models.WatchRecord) float64 {
	if len(records) == 0 {
		return 0
	}

	var userSum float64
	userCount := 0
	var refSum float64
	for _, rec := range records {
		if rec.UserRating != nil {
			userSum += *rec.UserRating
			userCount++
		}
		refSum += rec.ReferenceRating
	}

	if userCount > 0 {
		return math.Round(userSum/float64(userCount)*10) / 10
	}
	return math.Round(refSum/float64(len(records))*10) / 10
}

// computeBehaviorProfile derives list behavior from the user's full record
// set regardless of status.
func computeBehaviorProfile(records []models.WatchRecord) models.BehaviorProfile {
	var want, watched, rewatched, dropped, rewatches int
	for _, rec := range records {
		switch rec.Status {
		case models.StatusWantToWatch:
			want++
		case models.StatusWatched:
			watched++
		case models.StatusRewatched:
			rewatched++
		case models.StatusDropped:
			dropped++
		}
		if rec.Status.IsCompleted() && (rec.WatchCount > 1 || rec.Status == models.StatusRewatched) {
			rewatches++
		}
	}

	completed := watched + rewatched

	profile := models.BehaviorProfile{}
	if completed > 0 {
		profile.RewatchRatePercent = math.Round(float64(rewatches) / float64(completed) * 100)
	}
	if want+dropped > 0 {
		profile.DropRatePercent = math.Round(float64(dropped) / float64(want+dropped) * 100)
	}
	if want+completed > 0 {
		profile.CompletionRatePercent = math.Round(float64(completed) / float64(want+completed) * 100)
	} else {
		profile.CompletionRatePercent = 100
	}
	return profile
}

// computeDerivedMetrics is a pure function of the genre profile and rating
// distribution.
func computeDerivedMetrics(genreProfile map[string]float64, dist models.RatingDistribution) models.ComputedMetrics {
	strongGenres := 0
	for _, score := range genreProfile {
		if score > 20 {
			strongGenres++
		}
	}

	return models.ComputedMetrics{
		PositiveIntensity: dist.HighPercent,
		NegativeIntensity: dist.LowPercent,
		Consistency:       dist.MediumPercent,
		Diversity:         math.Min(100, float64(strongGenres)*5),
	}
}
