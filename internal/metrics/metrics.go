// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

// Package metrics registers the Prometheus instruments exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TasteMapComputations counts taste-map builds by outcome
	// (computed, cached, empty, error).
	TasteMapComputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tastematch",
		Subsystem: "tastemap",
		Name:      "computations_total",
		Help:      "Taste map computations by outcome.",
	}, []string{"outcome"})

	// TasteMapDuration observes taste-map build latency in seconds.
	TasteMapDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tastematch",
		Subsystem: "tastemap",
		Name:      "computation_duration_seconds",
		Help:      "Taste map computation latency.",
		Buckets:   prometheus.DefBuckets,
	})

	// SimilarityComputations counts pairwise similarity computations by outcome
	// (computed, degenerate, error).
	SimilarityComputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tastematch",
		Subsystem: "similarity",
		Name:      "computations_total",
		Help:      "Pairwise similarity computations by outcome.",
	}, []string{"outcome"})

	// SimilarUserSearches counts similar-user searches by outcome
	// (cached, computed, insufficient_history, error).
	SimilarUserSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tastematch",
		Subsystem: "similarity",
		Name:      "searches_total",
		Help:      "Similar-user searches by outcome.",
	}, []string{"outcome"})

	// SimilaritySearchDuration observes full similar-user search latency.
	SimilaritySearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tastematch",
		Subsystem: "similarity",
		Name:      "search_duration_seconds",
		Help:      "Similar-user search latency.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	// MetadataFetches counts provider lookups by outcome (hit, miss, error).
	MetadataFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tastematch",
		Subsystem: "metadata",
		Name:      "fetches_total",
		Help:      "Metadata provider lookups by outcome.",
	}, []string{"outcome"})

	// MetadataFetchDuration observes single provider lookup latency.
	MetadataFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tastematch",
		Subsystem: "metadata",
		Name:      "fetch_duration_seconds",
		Help:      "Metadata provider lookup latency.",
		Buckets:   prometheus.DefBuckets,
	})

	// Recommendations counts selection attempts by outcome
	// (selected, list_empty, filtered_out, error).
	Recommendations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tastematch",
		Subsystem: "recommend",
		Name:      "selections_total",
		Help:      "Recommendation selection attempts by outcome.",
	}, []string{"outcome"})

	// CacheOperations counts cache reads by cache name and result (hit, miss).
	CacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tastematch",
		Subsystem: "cache",
		Name:      "reads_total",
		Help:      "Cache reads by cache name and result.",
	}, []string{"cache", "result"})

	// HTTPRequestDuration observes inbound request latency by route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tastematch",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Inbound HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)
