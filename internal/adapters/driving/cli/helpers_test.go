package cli

import (
	"context"
	"sort"
	"strings"

	"github.com/custodia-labs/vconstore/internal/core/domain"
)

// fakeStorageService is an in-memory StorageService for command tests.
type fakeStorageService struct {
	records map[string]*domain.VCon

	failSave   bool
	failDelete bool
}

func newFakeStorageService() *fakeStorageService {
	return &fakeStorageService{records: map[string]*domain.VCon{}}
}

func (f *fakeStorageService) Save(_ context.Context, vcon *domain.VCon) bool {
	if f.failSave || vcon == nil || vcon.UUID == "" {
		return false
	}
	f.records[vcon.UUID] = vcon
	return true
}

func (f *fakeStorageService) Get(_ context.Context, uuid string) *domain.VCon {
	return f.records[uuid]
}

func (f *fakeStorageService) Delete(_ context.Context, uuid string) bool {
	if f.failDelete {
		return false
	}
	delete(f.records, uuid)
	return true
}

func (f *fakeStorageService) Search(_ context.Context, query domain.SearchQuery) []*domain.VCon {
	results := []*domain.VCon{}
	for _, vcon := range f.records {
		if query.Subject == "" || strings.Contains(strings.ToLower(vcon.Subject), strings.ToLower(query.Subject)) {
			results = append(results, vcon)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].UUID < results[j].UUID })
	return results
}

// setupTestServices injects a fake storage service and returns it with
// a cleanup restoring the lazy wiring.
func setupTestServices() (*fakeStorageService, func()) {
	fake := newFakeStorageService()
	SetStorageService(fake)
	return fake, func() {
		SetStorageService(nil)
	}
}
