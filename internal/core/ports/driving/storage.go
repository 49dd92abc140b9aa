package driving

import (
	"context"

	"github.com/custodia-labs/vconstore/internal/core/domain"
)

// StorageService exposes the four public vCon operations.
//
// Every operation is total: infrastructure faults are logged inside
// the service and reported through the designated "not successful"
// outcome (false, nil, or an empty list), never as an error or panic.
// Callers therefore cannot distinguish "store was down" from "record
// genuinely absent"; that ambiguity is part of the contract.
type StorageService interface {
	// Save persists a record: store first, then a best-effort cache
	// refresh. Returns false when the record has no uuid or the
	// store write fails.
	Save(ctx context.Context, vcon *domain.VCon) bool

	// Get returns the record for uuid, preferring the cache, or nil
	// when absent.
	Get(ctx context.Context, uuid string) *domain.VCon

	// Delete removes the record and invalidates its cache entry.
	// Deleting a uuid that does not exist still returns true.
	Delete(ctx context.Context, uuid string) bool

	// Search returns full records matching the query. An empty query
	// returns every record. Never returns nil.
	Search(ctx context.Context, query domain.SearchQuery) []*domain.VCon
}
