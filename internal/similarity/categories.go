// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package similarity

import "math"

// RatingCategory is an ordinal bucket of the 1-10 rating scale.
type RatingCategory int

// Categories in ascending order. The ordering doubles as an ordinal scale
// for intensity distance.
const (
	CategoryVeryBad RatingCategory = iota // 1-3
	CategoryBad                           // 4-5
	CategoryNeutral                       // 6-7
	CategoryGood                          // 8-9
	CategoryEpic                          // 10
)

// String returns the category's display name.
func (c RatingCategory) String() string {
	switch c {
	case CategoryVeryBad:
		return "VERY_BAD"
	case CategoryBad:
		return "BAD"
	case CategoryNeutral:
		return "NEUTRAL"
	case CategoryGood:
		return "GOOD"
	default:
		return "EPIC"
	}
}

// RatingCategoryOf buckets a rating. Total over every rating from 1 up;
// anything at 10 or above is EPIC.
func RatingCategoryOf(rating float64) RatingCategory {
	switch {
	case rating <= 3:
		return CategoryVeryBad
	case rating <= 5:
		return CategoryBad
	case rating <= 7:
		return CategoryNeutral
	case rating < 10:
		return CategoryGood
	default:
		return CategoryEpic
	}
}

// IntensityMatch scores how close two ratings are on the category scale:
// 1 for the same category, decreasing by 0.25 per ordinal step, floored at 0.
func IntensityMatch(a, b float64) float64 {
	catA := RatingCategoryOf(a)
	catB := RatingCategoryOf(b)
	if catA == catB {
		return 1
	}
	distance := math.Abs(float64(catA) - float64(catB))
	return math.Max(0, 1-distance*0.25)
}
