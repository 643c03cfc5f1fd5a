// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package similarity

import (
	"context"
	"fmt"
	"math"

	"github.com/tomtom215/tastematch/internal/models"
)

// ComputeRatingPatterns produces the detailed rating-pattern breakdown for a
// user pair. Only computed on request; the overall match never depends on it.
//
// Two early exits apply, in order. When userA has fewer than two completed
// records the result is zeroed with TotalSharedMovies = 0. When the users
// share fewer than two completed records the result is zeroed but
// TotalSharedMovies carries the raw intersection size, before any rating
// filter. On the normal path TotalSharedMovies is the count of shared
// records rated on both sides.
func (e *Engine) ComputeRatingPatterns(ctx context.Context, userA, userB string) (*models.RatingMatchPatterns, error) {
	completedStatuses := []models.WatchStatus{models.StatusWatched, models.StatusRewatched}

	recsA, err := e.history.QueryByUser(ctx, userA, completedStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to load completed records for %s: %w", userA, err)
	}
	if len(recsA) < 2 {
		return &models.RatingMatchPatterns{}, nil
	}

	recsB, err := e.history.QueryByUser(ctx, userB, completedStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to load completed records for %s: %w", userB, err)
	}

	// Shared content is matched on the provider ID alone; the media type does
	// not participate in the join.
	byID := make(map[int64]models.WatchRecord, len(recsB))
	for _, rec := range recsB {
		byID[rec.ContentID] = rec
	}

	type sharedPair struct {
		a, b models.WatchRecord
	}
	var shared []sharedPair
	for _, recA := range recsA {
		if recB, ok := byID[recA.ContentID]; ok {
			shared = append(shared, sharedPair{a: recA, b: recB})
		}
	}

	if len(shared) < 2 {
		return &models.RatingMatchPatterns{TotalSharedMovies: len(shared)}, nil
	}

	patterns := &models.RatingMatchPatterns{}
	var ratingsA, ratingsB []float64
	var totalDiff float64

	for _, pair := range shared {
		if pair.a.UserRating == nil || pair.b.UserRating == nil {
			continue
		}
		ra := *pair.a.UserRating
		rb := *pair.b.UserRating
		ratingsA = append(ratingsA, ra)
		ratingsB = append(ratingsB, rb)

		diff := math.Abs(ra - rb)
		totalDiff += diff

		// First match wins, in this priority order.
		switch {
		case diff == 0:
			patterns.PerfectMatches++
		case diff <= 1:
			patterns.CloseMatches++
		case diff <= 2:
			patterns.ModerateMatches++
		}

		if RatingCategoryOf(ra) == RatingCategoryOf(rb) {
			patterns.SameCategoryMatches++
		} else {
			patterns.DifferentIntensityMatches++
		}

		if ra >= 8 && rb >= 8 {
			patterns.BothHighlyRated++
		}
		if pair.a.WatchCount > 1 && pair.b.WatchCount > 1 {
			patterns.BothRewatched++
		}
	}

	totalPairs := len(ratingsA)
	patterns.TotalSharedMovies = totalPairs
	if totalPairs == 0 {
		return patterns, nil
	}

	// The averages over shared pairs show how each user tends to rate the
	// content they both watched. IntensityMatch compares the raw averages;
	// the reported averages are rounded to one decimal.
	var sumA, sumB float64
	for i := range ratingsA {
		sumA += ratingsA[i]
		sumB += ratingsB[i]
	}
	avgA := sumA / float64(totalPairs)
	avgB := sumB / float64(totalPairs)
	patterns.IntensityMatch = IntensityMatch(avgA, avgB)
	patterns.AvgRatingUserA = math.Round(avgA*10) / 10
	patterns.AvgRatingUserB = math.Round(avgB*10) / 10

	patterns.PearsonCorrelation = PearsonCorrelation(ratingsA, ratingsB)
	patterns.AvgRatingDifference = math.Round(totalDiff/float64(totalPairs)*10) / 10
	patterns.PositiveRatingsPercentage = math.Round(float64(patterns.BothHighlyRated) / float64(totalPairs) * 100)
	patterns.OverallMovieMatch = float64(patterns.PerfectMatches) / float64(totalPairs)

	return patterns, nil
}
