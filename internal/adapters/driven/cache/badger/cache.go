// Package badger provides a BadgerDB-backed implementation of the
// Cache driven port. Badger's native per-entry TTL handles expiry;
// expired entries simply stop being visible to reads.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/custodia-labs/vconstore/internal/core/domain"
	"github.com/custodia-labs/vconstore/internal/core/ports/driven"
	"github.com/custodia-labs/vconstore/internal/logger"
)

// Ensure Cache implements the interface.
var _ driven.Cache = (*Cache)(nil)

// Cache wraps a BadgerDB instance used purely as a read accelerator.
type Cache struct {
	db *badger.DB
}

// badgerLoggerAdapter routes badger's internal logging through the
// module logger.
type badgerLoggerAdapter struct{}

var _ badger.Logger = badgerLoggerAdapter{}

func (badgerLoggerAdapter) Errorf(msg string, items ...any) {
	logger.Warn("badger: "+msg, items...)
}

func (badgerLoggerAdapter) Warningf(msg string, items ...any) {
	logger.Warn("badger: "+msg, items...)
}

func (badgerLoggerAdapter) Infof(msg string, items ...any) {
	logger.Debug("badger: "+msg, items...)
}

func (badgerLoggerAdapter) Debugf(msg string, items ...any) {
	logger.Debug("badger: "+msg, items...)
}

// Open opens a cache at the specified directory, creating it if
// needed.
func Open(dir string) (*Cache, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, err
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	return open(badger.DefaultOptions(dir))
}

// OpenInMemory opens a non-persistent cache. Useful for testing.
func OpenInMemory() (*Cache, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Cache, error) {
	opts.Logger = badgerLoggerAdapter{}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Get returns the value stored under key, or domain.ErrNotFound when
// the key is absent or expired.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}
	return value, nil
}

// Set stores value under key. A positive ttl expires the entry; a
// non-positive ttl stores it without expiry.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.db.Update(func(tx *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return tx.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry for key. Absent keys are a no-op.
func (c *Cache) Delete(_ context.Context, key string) error {
	err := c.db.Update(func(tx *badger.Txn) error {
		return tx.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Ping confirms the cache handle is usable.
func (c *Cache) Ping(_ context.Context) error {
	if c.db.IsClosed() {
		return errors.New("cache is closed")
	}
	return c.db.View(func(*badger.Txn) error { return nil })
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
