// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

// Package metadata fetches external content metadata (genres, language,
// credits) used to enrich watch records.
//
// Providers never surface errors: any failure yields a nil result and the
// caller proceeds with partial data. Recommendation quality degrades
// gracefully instead of failing the request.
package metadata

import (
	"context"

	"github.com/tomtom215/tastematch/internal/models"
)

// Provider fetches metadata for one piece of content. Returns nil on any
// failure; failures are logged inside the implementation, never propagated.
type Provider interface {
	Fetch(ctx context.Context, contentID int64, mediaType models.MediaType) *models.ContentMetadata
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, contentID int64, mediaType models.MediaType) *models.ContentMetadata

// Fetch implements Provider.
func (f ProviderFunc) Fetch(ctx context.Context, contentID int64, mediaType models.MediaType) *models.ContentMetadata {
	return f(ctx, contentID, mediaType)
}
