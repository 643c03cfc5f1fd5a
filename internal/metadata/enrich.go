// TasteMatch - Movie and TV Taste Profiling and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tastematch

package metadata

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/tastematch/internal/models"
)

// EnrichedRecord pairs a watch record with its fetched metadata.
// Meta is nil when the lookup failed; consumers must null-check.
type EnrichedRecord struct {
	Record models.WatchRecord
	Meta   *models.ContentMetadata
}

// EnrichRecords fetches metadata for the given records in bounded parallel
// batches, pausing between batches to respect the provider's rate limit.
//
// Output order matches input order, and every aggregation downstream is
// order-independent, so parallel execution cannot change results. Individual
// lookup failures leave a nil Meta; the batch never aborts.
func EnrichRecords(ctx context.Context, provider Provider, records []models.WatchRecord, batchSize int, batchDelay time.Duration) []EnrichedRecord {
	if batchSize <= 0 {
		batchSize = 5
	}

	out := make([]EnrichedRecord, len(records))
	for i := range records {
		out[i].Record = records[i]
	}

	for start := 0; start < len(records); start += batchSize {
		if ctx.Err() != nil {
			break
		}

		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}

		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				rec := records[i]
				out[i].Meta = provider.Fetch(ctx, rec.ContentID, rec.MediaType)
				return nil
			})
		}
		// Fetch never returns an error, so Wait only synchronizes the batch.
		_ = g.Wait()

		if end < len(records) && batchDelay > 0 {
			select {
			case <-time.After(batchDelay):
			case <-ctx.Done():
				return out
			}
		}
	}

	return out
}
