// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package models

import "time"

// SimilarityResult is the pairwise comparison of two users' tastes.
// Ephemeral; only the scalar OverallMatch outlives the request via cache.
type SimilarityResult struct {
	// TasteSimilarity is the cosine similarity of the two genre profiles, 0-1.
	TasteSimilarity float64 `json:"taste_similarity"`

	// RatingCorrelation is the Pearson correlation over shared rated content, -1 to 1.
	RatingCorrelation float64 `json:"rating_correlation"`

	// PersonOverlap is the Jaccard overlap of favored people, 0-1.
	PersonOverlap float64 `json:"person_overlap"`

	// GenreRatingSimilarity is a secondary metric over common genres only, 0-1.
	// Exposed for diagnostics; not part of the weighted overall score.
	GenreRatingSimilarity float64 `json:"genre_rating_similarity"`

	// OverallMatch is the weighted combination of the metrics above, 0-1.
	// Always derived last from the other fields.
	OverallMatch float64 `json:"overall_match"`

	// RatingPatterns is populated only when pattern detail was requested.
	RatingPatterns *RatingMatchPatterns `json:"rating_patterns,omitempty"`
}

// RatingMatchPatterns is the detailed breakdown of how two users rated the
// content they both completed.
//
// TotalSharedMovies means different things on different paths: when the
// requesting user has fewer than two completed records it is 0; when fewer
// than two completed records are shared it is the raw intersection size
// before rating filtering; on the normal path it is the count of shared
// records where both sides carry a rating.
type RatingMatchPatterns struct {
	PerfectMatches            int     `json:"perfect_matches"`  // identical ratings
	CloseMatches              int     `json:"close_matches"`    // differ by at most 1
	ModerateMatches           int     `json:"moderate_matches"` // differ by at most 2
	SameCategoryMatches       int     `json:"same_category_matches"`
	DifferentIntensityMatches int     `json:"different_intensity_matches"`
	BothHighlyRated           int     `json:"both_highly_rated"` // both rated 8+
	BothRewatched             int     `json:"both_rewatched"`    // both watch_count > 1
	TotalSharedMovies         int     `json:"total_shared_movies"`
	AvgRatingUserA            float64 `json:"avg_rating_user_a"` // over shared rated pairs, 1 decimal
	AvgRatingUserB            float64 `json:"avg_rating_user_b"`
	IntensityMatch            float64 `json:"intensity_match"` // category closeness of the two averages
	PearsonCorrelation        float64 `json:"pearson_correlation"`
	AvgRatingDifference       float64 `json:"avg_rating_difference"` // 1 decimal
	PositiveRatingsPercentage float64 `json:"positive_ratings_percentage"`
	OverallMovieMatch         float64 `json:"overall_movie_match"` // perfect / total pairs
}

// SimilarUser is one cached entry in a user's ranked similar-user list.
type SimilarUser struct {
	UserID       string  `json:"user_id"`
	OverallMatch float64 `json:"overall_match"` // 0-1
}

// SimilarUserMatch is the display form of a similar user, enriched with
// directory fields and the match expressed as a percentage.
type SimilarUserMatch struct {
	UserID       string    `json:"user_id"`
	MatchPercent float64   `json:"match_percent"` // overall match x100, 1 decimal
	WatchCount   int       `json:"watch_count"`
	MemberSince  time.Time `json:"member_since"`
}

// SimilarUsersResult is the outcome of a similar-user lookup. Message is set
// on empty outcomes so callers can explain why no matches were returned.
type SimilarUsersResult struct {
	Users     []SimilarUserMatch `json:"users"`
	Message   string             `json:"message,omitempty"`
	FromCache bool               `json:"from_cache"`
}
