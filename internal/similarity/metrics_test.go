// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package similarity

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    map[string]float64
		b    map[string]float64
		want float64
	}{
		{
			name: "identical profiles",
			a:    map[string]float64{"Action": 80, "Drama": 60},
			b:    map[string]float64{"Action": 80, "Drama": 60},
			want: 1,
		},
		{
			name: "disjoint genres",
			a:    map[string]float64{"Action": 80},
			b:    map[string]float64{"Drama": 60},
			want: 0,
		},
		{
			name: "empty first profile",
			a:    map[string]float64{},
			b:    map[string]float64{"Drama": 60},
			want: 0,
		},
		{
			name: "empty second profile",
			a:    map[string]float64{"Action": 80},
			b:    map[string]float64{},
			want: 0,
		},
		{
			name: "zero magnitude",
			a:    map[string]float64{"Action": 0},
			b:    map[string]float64{"Action": 80},
			want: 0,
		},
		{
			name: "scaled profiles are identical directions",
			a:    map[string]float64{"Action": 40, "Drama": 30},
			b:    map[string]float64{"Action": 80, "Drama": 60},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if !floatEquals(got, tt.want) {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilaritySymmetry(t *testing.T) {
	a := map[string]float64{"Action": 75, "Comedy": 40, "Horror": 20}
	b := map[string]float64{"Action": 50, "Drama": 90}

	ab := CosineSimilarity(a, b)
	ba := CosineSimilarity(b, a)
	if !floatEquals(ab, ba) {
		t.Errorf("CosineSimilarity is not symmetric: %v vs %v", ab, ba)
	}
}

func TestGenreRatingSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    map[string]float64
		b    map[string]float64
		want float64
	}{
		{
			name: "identical scores",
			a:    map[string]float64{"Action": 80},
			b:    map[string]float64{"Action": 80},
			want: 1,
		},
		{
			name: "no common genres",
			a:    map[string]float64{"Action": 80},
			b:    map[string]float64{"Drama": 60},
			want: 0,
		},
		{
			// 80 vs 60 scales to 8 vs 6, diff 2: 1 - 2/10 = 0.8
			name: "two point gap on the ten scale",
			a:    map[string]float64{"Action": 80},
			b:    map[string]float64{"Action": 60},
			want: 0.8,
		},
		{
			// Average over the intersection only; Drama is ignored.
			name: "average over common genres only",
			a:    map[string]float64{"Action": 80, "Drama": 90},
			b:    map[string]float64{"Action": 60, "Comedy": 50},
			want: 0.8,
		},
		{
			name: "both empty",
			a:    map[string]float64{},
			b:    map[string]float64{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenreRatingSimilarity(tt.a, tt.b)
			if !floatEquals(got, tt.want) {
				t.Errorf("GenreRatingSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPearsonCorrelation(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		y    []float64
		want float64
	}{
		{
			name: "perfect positive",
			x:    []float64{1, 2, 3, 4},
			y:    []float64{2, 4, 6, 8},
			want: 1,
		},
		{
			name: "perfect negative",
			x:    []float64{1, 2, 3, 4},
			y:    []float64{8, 6, 4, 2},
			want: -1,
		},
		{
			name: "fewer than two pairs",
			x:    []float64{5},
			y:    []float64{5},
			want: 0,
		},
		{
			name: "empty input",
			x:    nil,
			y:    nil,
			want: 0,
		},
		{
			name: "mismatched lengths",
			x:    []float64{1, 2, 3},
			y:    []float64{1, 2},
			want: 0,
		},
		{
			name: "zero variance on one side",
			x:    []float64{5, 5, 5},
			y:    []float64{1, 2, 3},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PearsonCorrelation(tt.x, tt.y)
			if !floatEquals(got, tt.want) {
				t.Errorf("PearsonCorrelation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPersonOverlap(t *testing.T) {
	tests := []struct {
		name string
		a    map[string]float64
		b    map[string]float64
		want float64
	}{
		{
			name: "half overlap",
			a:    map[string]float64{"Ryan Gosling": 90, "Emma Stone": 85},
			b:    map[string]float64{"Ryan Gosling": 70, "Tom Hanks": 95},
			want: 1.0 / 3.0,
		},
		{
			name: "both empty",
			a:    map[string]float64{},
			b:    map[string]float64{},
			want: 0,
		},
		{
			// A zero score does not count as a known person: only Ryan
			// remains on each side.
			name: "zero scored people are ignored",
			a:    map[string]float64{"Ryan Gosling": 90, "Emma Stone": 0},
			b:    map[string]float64{"Ryan Gosling": 70, "Emma Stone": 0},
			want: 1,
		},
		{
			name: "one side empty after filtering",
			a:    map[string]float64{"Ryan Gosling": 90},
			b:    map[string]float64{"Emma Stone": 0},
			want: 0,
		},
		{
			name: "identical sets",
			a:    map[string]float64{"A": 10, "B": 20},
			b:    map[string]float64{"A": 5, "B": 99},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PersonOverlap(tt.a, tt.b)
			if !floatEquals(got, tt.want) {
				t.Errorf("PersonOverlap() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeOverallMatch(t *testing.T) {
	tests := []struct {
		name        string
		taste       float64
		correlation float64
		person      float64
		want        float64
	}{
		{
			name:        "all zero with neutral correlation contribution",
			taste:       0,
			correlation: 0,
			person:      0,
			// 0*0.5 + 0.5*0.3 + 0*0.2
			want: 0.15,
		},
		{
			name:        "all maxed",
			taste:       1,
			correlation: 1,
			person:      1,
			want:        1,
		},
		{
			name:        "fully negative correlation cancels its weight",
			taste:       1,
			correlation: -1,
			person:      1,
			want:        0.7,
		},
		{
			name:        "mixed inputs",
			taste:       0.8,
			correlation: 0.5,
			person:      0.4,
			// 0.4 + 0.75*0.3 + 0.08
			want: 0.705,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeOverallMatch(tt.taste, tt.correlation, tt.person)
			if !floatEquals(got, tt.want) {
				t.Errorf("ComputeOverallMatch() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsSimilar(t *testing.T) {
	if IsSimilar(0.5) {
		t.Error("Expected exactly 0.5 to not be similar (strict threshold)")
	}
	if !IsSimilar(0.501) {
		t.Error("Expected 0.501 to be similar")
	}
	if IsSimilar(0.2) {
		t.Error("Expected 0.2 to not be similar")
	}
}
