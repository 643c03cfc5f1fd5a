// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package metadata

import (
	"context"
	"time"

	"github.com/tomtom215/tastematch/internal/cache"
	"github.com/tomtom215/tastematch/internal/metrics"
	"github.com/tomtom215/tastematch/internal/models"
)

// CachedProvider decorates a Provider with a TTL cache. Only successful
// lookups are cached; a nil result is retried on the next call.
type CachedProvider struct {
	inner Provider
	cache *cache.Cache
	ttl   time.Duration
}

var _ Provider = (*CachedProvider)(nil)

// NewCachedProvider wraps inner with the given cache and entry TTL.
func NewCachedProvider(inner Provider, c *cache.Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{inner: inner, cache: c, ttl: ttl}
}

// Fetch returns cached metadata when present, else delegates to the inner
// provider and caches a successful result.
func (p *CachedProvider) Fetch(ctx context.Context, contentID int64, mediaType models.MediaType) *models.ContentMetadata {
	key := cache.MetadataKey(contentID, string(mediaType))

	if cached, ok := p.cache.Get(key); ok {
		if meta, ok := cached.(*models.ContentMetadata); ok {
			metrics.CacheOperations.WithLabelValues("metadata", "hit").Inc()
			return meta
		}
	}
	metrics.CacheOperations.WithLabelValues("metadata", "miss").Inc()

	meta := p.inner.Fetch(ctx, contentID, mediaType)
	if meta != nil {
		p.cache.SetWithTTL(key, meta, p.ttl)
	}
	return meta
}
