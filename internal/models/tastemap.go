// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package models

import "time"

// TasteMap is a user's computed preference profile across genres, people,
// content type, and rating tendencies. It is computed on demand from the
// user's completed watch history, cached whole, and always replaced whole.
type TasteMap struct {
	// GenreProfile maps genre name to a 0-100 affinity score
	// (average effective rating for that genre, scaled by 10).
	GenreProfile map[string]float64 `json:"genre_profile"`

	// PersonProfiles holds per-name affinity scores for actors and directors.
	PersonProfiles PersonProfiles `json:"person_profiles"`

	// TypeProfile is the movie/tv split of the profiled records, in percent.
	TypeProfile TypeProfile `json:"type_profile"`

	// RatingDistribution buckets effective ratings into high (8-10),
	// medium (5-7), and low (1-4) percentages.
	RatingDistribution RatingDistribution `json:"rating_distribution"`

	// AverageRating is the mean user rating when any record carries one,
	// else the mean reference rating across all records.
	AverageRating float64 `json:"average_rating"`

	// BehaviorProfile is derived from the user's full record set regardless
	// of status.
	BehaviorProfile BehaviorProfile `json:"behavior_profile"`

	// ComputedMetrics are pure derivations of the profile fields above.
	ComputedMetrics ComputedMetrics `json:"computed_metrics"`

	UpdatedAt time.Time `json:"updated_at"`
}

// PersonProfiles holds actor and director affinity maps, name -> 0-100 score.
type PersonProfiles struct {
	Actors    map[string]float64 `json:"actors"`
	Directors map[string]float64 `json:"directors"`
}

// TypeProfile is the rounded movie/tv percentage split. The parts sum to
// roughly 100 after rounding.
type TypeProfile struct {
	MoviePercent float64 `json:"movie_percent"`
	TVPercent    float64 `json:"tv_percent"`
}

// RatingDistribution buckets a user's effective ratings.
type RatingDistribution struct {
	HighPercent   float64 `json:"high_percent"`   // effective ratings 8-10
	MediumPercent float64 `json:"medium_percent"` // effective ratings 5-7
	LowPercent    float64 `json:"low_percent"`    // effective ratings 1-4
}

// BehaviorProfile captures list behavior across every status.
type BehaviorProfile struct {
	RewatchRatePercent    float64 `json:"rewatch_rate_percent"`
	DropRatePercent       float64 `json:"drop_rate_percent"`
	CompletionRatePercent float64 `json:"completion_rate_percent"`
}

// ComputedMetrics are derived entirely from the genre profile and the rating
// distribution, with no additional I/O.
type ComputedMetrics struct {
	PositiveIntensity float64 `json:"positive_intensity"`
	NegativeIntensity float64 `json:"negative_intensity"`
	Consistency       float64 `json:"consistency"`
	Diversity         float64 `json:"diversity"`
}

// EmptyTasteMap is the canonical profile for a user with no completed records.
// Completion rate defaults to 100; every other numeric field is zero.
func EmptyTasteMap(now time.Time) *TasteMap {
	return &TasteMap{
		GenreProfile: map[string]float64{},
		PersonProfiles: PersonProfiles{
			Actors:    map[string]float64{},
			Directors: map[string]float64{},
		},
		BehaviorProfile: BehaviorProfile{CompletionRatePercent: 100},
		UpdatedAt:       now,
	}
}
