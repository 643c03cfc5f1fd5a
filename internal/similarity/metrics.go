// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

// Package similarity compares users' taste profiles with multiple statistical
// measures and combines them into one match score.
//
// Every metric has a defined zero-value output for degenerate input; none of
// them panic or return errors for "not enough data".
package similarity

import "math"

// Weights of the overall match combination. Fixed policy constants, not
// configurable per call.
const (
	tasteWeight       = 0.5
	correlationWeight = 0.3
	personWeight      = 0.2
)

// SimilarityThreshold is the single gate for "these users are similar".
// Strictly greater-than: an overall match of exactly 0.5 is not similar.
const SimilarityThreshold = 0.5

// CosineSimilarity computes cosine similarity between two genre profiles over
// the union of their keys; a genre missing from one profile scores 0 in that
// dimension. Returns 0 when either profile is empty or has zero magnitude.
func CosineSimilarity(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}

	var dot, magA, magB float64
	for k := range keys {
		va := a[k]
		vb := b[k]
		dot += va * vb
		magA += va * va
		magB += vb * vb
	}

	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// GenreRatingSimilarity compares rating levels over the intersection of genre
// keys only. Per common genre the 0-100 scores are scaled to 0-10 and
// compared as max(0, 1 - diff/10); the result is the average across common
// genres, or 0 when there are none.
func GenreRatingSimilarity(a, b map[string]float64) float64 {
	var sum float64
	common := 0
	for genre, scoreA := range a {
		scoreB, ok := b[genre]
		if !ok {
			continue
		}
		diff := math.Abs(scoreA/10 - scoreB/10)
		sum += math.Max(0, 1-diff/10)
		common++
	}

	if common == 0 {
		return 0
	}
	return sum / float64(common)
}

// PearsonCorrelation computes the linear correlation of two paired rating
// sequences. Requires at least two equal-length pairs and non-zero variance
// on both sides; returns 0 for any degenerate input.
func PearsonCorrelation(x, y []float64) float64 {
	n := len(x)
	if n < 2 || n != len(y) {
		return 0
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}

	fn := float64(n)
	numerator := fn*sumXY - sumX*sumY
	denominator := math.Sqrt(fn*sumX2-sumX*sumX) * math.Sqrt(fn*sumY2-sumY*sumY)
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// PersonOverlap computes Jaccard similarity over the sets of person names
// with a positive score in each profile. A person profiled at 0 does not
// count as known. Returns 0 when both filtered sets are empty.
func PersonOverlap(a, b map[string]float64) float64 {
	setA := positiveKeys(a)
	setB := positiveKeys(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for name := range setA {
		if _, ok := setB[name]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func positiveKeys(profile map[string]float64) map[string]struct{} {
	set := make(map[string]struct{}, len(profile))
	for name, score := range profile {
		if score > 0 {
			set[name] = struct{}{}
		}
	}
	return set
}

// ComputeOverallMatch combines the three primary metrics with fixed weights.
// The correlation is shifted from [-1,1] into [0,1] before weighting.
func ComputeOverallMatch(tasteSimilarity, ratingCorrelation, personOverlap float64) float64 {
	normalizedCorrelation := (ratingCorrelation + 1) / 2
	return tasteSimilarity*tasteWeight +
		normalizedCorrelation*correlationWeight +
		personOverlap*personWeight
}

// IsSimilar reports whether an overall match clears the similarity gate.
func IsSimilar(overallMatch float64) bool {
	return overallMatch > SimilarityThreshold
}
