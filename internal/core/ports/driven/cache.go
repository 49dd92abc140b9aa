package driven

import (
	"context"
	"time"
)

// Cache is a key-value accelerator with per-entry expiry.
// It is strictly best-effort: callers must treat every fault as
// non-fatal. A miss is reported as domain.ErrNotFound.
type Cache interface {
	// Get returns the value stored under key, or domain.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key with the given time-to-live.
	// A non-positive ttl stores the entry without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the entry for key. Deleting an absent key is
	// not an error.
	Delete(ctx context.Context, key string) error

	// Ping confirms the cache is usable. Called once at startup;
	// failure disables caching for the process lifetime.
	Ping(ctx context.Context) error

	// Close releases the underlying handle.
	Close() error
}
