package driven

import (
	"context"

	"github.com/custodia-labs/vconstore/internal/core/domain"
)

// VConStore persists vCon records in a relational backend.
// Backed by SQLite. Implementations report failures as errors;
// converting failures to the public operations' total outcomes is the
// service layer's job.
type VConStore interface {
	// SaveVCon upserts the header row keyed by the record's uuid,
	// then upserts every sub-collection row tagged with the
	// store-generated parent identifier and its position.
	SaveVCon(ctx context.Context, vcon *domain.VCon) error

	// GetVCon retrieves a record by uuid and reassembles it from the
	// header row plus the four position-ordered sub-collections.
	// Returns domain.ErrNotFound when no header row exists.
	GetVCon(ctx context.Context, uuid string) (*domain.VCon, error)

	// DeleteVCon removes the header row; dependent rows are removed
	// by the schema's cascade. Deleting a uuid that does not exist is
	// not an error.
	DeleteVCon(ctx context.Context, uuid string) error

	// FindUUIDs returns the uuids of records matching the query,
	// header table only.
	FindUUIDs(ctx context.Context, query domain.SearchQuery) ([]string, error)
}
