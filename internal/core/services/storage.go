package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/custodia-labs/vconstore/internal/core/domain"
	"github.com/custodia-labs/vconstore/internal/core/ports/driven"
	"github.com/custodia-labs/vconstore/internal/core/ports/driving"
	"github.com/custodia-labs/vconstore/internal/logger"
)

// Ensure StorageService implements the interface.
var _ driving.StorageService = (*StorageService)(nil)

// cacheKeyPrefix namespaces vCon entries in the cache.
const cacheKeyPrefix = "vcon:"

// DefaultCacheTTL is the cache entry time-to-live applied when none
// is configured.
const DefaultCacheTTL = 3600 * time.Second

// StorageService persists vCon records through a VConStore and
// accelerates reads through an optional Cache.
//
// The cache is write-through and read-through: writes commit to the
// store before the cache entry is refreshed, reads check the cache
// before falling back to the store. Cache faults only ever cost
// latency, never correctness.
type StorageService struct {
	store driven.VConStore
	cache driven.Cache
	ttl   time.Duration
}

// NewStorageService creates a new storage service. cache may be nil
// to run uncached. A non-positive ttl falls back to DefaultCacheTTL.
func NewStorageService(store driven.VConStore, cache driven.Cache, ttl time.Duration) *StorageService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &StorageService{
		store: store,
		cache: cache,
		ttl:   ttl,
	}
}

// Save persists a record. The store write must fully succeed before
// the cache is touched; the cache refresh is best-effort.
func (s *StorageService) Save(ctx context.Context, vcon *domain.VCon) bool {
	if err := vcon.Validate(); err != nil {
		logger.Error("save rejected: %v", err)
		return false
	}
	if s.store == nil {
		logger.Error("save failed: no store configured")
		return false
	}

	if err := s.store.SaveVCon(ctx, vcon); err != nil {
		logger.Error("failed to save vCon %s: %v", vcon.UUID, err)
		return false
	}
	logger.Info("saved vCon %s", vcon.UUID)

	s.cachePut(ctx, vcon)
	return true
}

// Get returns the record for uuid, or nil when absent. A cache hit
// short-circuits the store entirely; on a miss the assembled record
// is cached for subsequent reads.
func (s *StorageService) Get(ctx context.Context, uuid string) *domain.VCon {
	if vcon := s.cacheGet(ctx, uuid); vcon != nil {
		return vcon
	}

	if s.store == nil {
		logger.Error("get failed: no store configured")
		return nil
	}

	vcon, err := s.store.GetVCon(ctx, uuid)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Error("failed to get vCon %s: %v", uuid, err)
		}
		return nil
	}

	s.cachePut(ctx, vcon)
	return vcon
}

// Delete removes the record and invalidates its cache entry.
// Deleting a uuid that does not exist still succeeds.
func (s *StorageService) Delete(ctx context.Context, uuid string) bool {
	if s.store == nil {
		logger.Error("delete failed: no store configured")
		return false
	}

	if err := s.store.DeleteVCon(ctx, uuid); err != nil {
		logger.Error("failed to delete vCon %s: %v", uuid, err)
		return false
	}
	logger.Info("deleted vCon %s", uuid)

	s.cacheDelete(ctx, uuid)
	return true
}

// Search returns the full records matching query. Matching uuids are
// resolved one at a time through Get so results ride the cache; a
// batch header+children fetch would skip it. Faults degrade to an
// empty list.
func (s *StorageService) Search(ctx context.Context, query domain.SearchQuery) []*domain.VCon {
	vcons := []*domain.VCon{}

	if s.store == nil {
		logger.Error("search failed: no store configured")
		return vcons
	}

	uuids, err := s.store.FindUUIDs(ctx, query)
	if err != nil {
		logger.Error("search failed: %v", err)
		return vcons
	}

	for _, uuid := range uuids {
		if vcon := s.Get(ctx, uuid); vcon != nil {
			vcons = append(vcons, vcon)
		}
	}
	return vcons
}

// cacheGet fetches and decodes a cached record. Any fault is logged
// and treated as a miss.
func (s *StorageService) cacheGet(ctx context.Context, uuid string) *domain.VCon {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, cacheKeyPrefix+uuid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("cache miss for vCon %s", uuid)
		} else {
			logger.Warn("cache read error for vCon %s: %v", uuid, err)
		}
		return nil
	}

	var vcon domain.VCon
	if err := json.Unmarshal(data, &vcon); err != nil {
		logger.Warn("discarding undecodable cache entry for vCon %s: %v", uuid, err)
		return nil
	}
	logger.Debug("cache hit for vCon %s", uuid)
	return &vcon
}

// cachePut stores a record in the cache with the configured TTL.
// Faults are logged and swallowed.
func (s *StorageService) cachePut(ctx context.Context, vcon *domain.VCon) {
	if s.cache == nil || vcon == nil {
		return
	}

	data, err := json.Marshal(vcon)
	if err != nil {
		logger.Warn("failed to encode vCon %s for cache: %v", vcon.UUID, err)
		return
	}
	if err := s.cache.Set(ctx, cacheKeyPrefix+vcon.UUID, data, s.ttl); err != nil {
		logger.Warn("failed to cache vCon %s: %v", vcon.UUID, err)
	}
}

// cacheDelete invalidates a record's cache entry. Faults are logged
// and swallowed.
func (s *StorageService) cacheDelete(ctx context.Context, uuid string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyPrefix+uuid); err != nil {
		logger.Warn("failed to invalidate cache for vCon %s: %v", uuid, err)
	}
}
