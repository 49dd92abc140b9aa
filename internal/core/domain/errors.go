package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMissingUUID indicates a record has no uuid and cannot be
	// persisted or looked up.
	ErrMissingUUID = errors.New("vCon must have a uuid")

	// ErrMalformedRow indicates a stored row is missing a field the
	// format requires (dialog type, analysis type/vendor). Such rows
	// are a hard decode error, never silently skipped.
	ErrMalformedRow = errors.New("malformed row")
)
