package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vconstore/internal/core/domain"
)

// fakeStorage is an in-memory StorageService for handler tests.
type fakeStorage struct {
	records map[string]*domain.VCon
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{records: map[string]*domain.VCon{}}
}

func (f *fakeStorage) Save(_ context.Context, vcon *domain.VCon) bool {
	if vcon == nil || vcon.UUID == "" {
		return false
	}
	f.records[vcon.UUID] = vcon
	return true
}

func (f *fakeStorage) Get(_ context.Context, uuid string) *domain.VCon {
	return f.records[uuid]
}

func (f *fakeStorage) Delete(_ context.Context, uuid string) bool {
	delete(f.records, uuid)
	return true
}

func (f *fakeStorage) Search(_ context.Context, query domain.SearchQuery) []*domain.VCon {
	results := []*domain.VCon{}
	for _, vcon := range f.records {
		if !query.CreatedAfter.IsZero() && vcon.CreatedAt.Before(query.CreatedAfter) {
			continue
		}
		results = append(results, vcon)
	}
	return results
}

func setupTestServer(t *testing.T) (*Server, *fakeStorage) {
	t.Helper()

	storage := newFakeStorage()
	server, err := NewServer(&Ports{Storage: storage})
	require.NoError(t, err)
	require.NotNil(t, server)

	return server, storage
}

// ==================== Ports Tests ====================

func TestPorts_Validate(t *testing.T) {
	ports := &Ports{Storage: newFakeStorage()}
	assert.NoError(t, ports.Validate())
}

func TestPorts_Validate_MissingStorage(t *testing.T) {
	ports := &Ports{}
	assert.ErrorIs(t, ports.Validate(), ErrMissingStorageService)
}

func TestNewServer_MissingStorage(t *testing.T) {
	_, err := NewServer(&Ports{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingStorageService)
}

// ==================== Tool Handler Tests ====================

func TestHandleSave(t *testing.T) {
	server, storage := setupTestServer(t)

	input := SaveInput{VCon: json.RawMessage(`{"uuid":"uuid-1","subject":"Test call"}`)}
	_, output, err := server.handleSave(context.Background(), nil, input)

	require.NoError(t, err)
	assert.True(t, output.Saved)
	assert.Equal(t, "uuid-1", output.UUID)
	assert.Contains(t, storage.records, "uuid-1")
}

func TestHandleSave_InvalidDocument(t *testing.T) {
	server, _ := setupTestServer(t)

	input := SaveInput{VCon: json.RawMessage(`{not json`)}
	_, _, err := server.handleSave(context.Background(), nil, input)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing vCon document")
}

func TestHandleSave_MissingUUID(t *testing.T) {
	server, _ := setupTestServer(t)

	input := SaveInput{VCon: json.RawMessage(`{"subject":"no uuid"}`)}
	_, output, err := server.handleSave(context.Background(), nil, input)

	require.NoError(t, err)
	assert.False(t, output.Saved)
}

func TestHandleGet(t *testing.T) {
	server, storage := setupTestServer(t)
	storage.records["uuid-1"] = &domain.VCon{UUID: "uuid-1", Subject: "Test call"}

	_, output, err := server.handleGet(context.Background(), nil, GetInput{UUID: "uuid-1"})

	require.NoError(t, err)
	assert.True(t, output.Found)
	assert.Contains(t, string(output.VCon), `"uuid":"uuid-1"`)
}

func TestHandleGet_NotFound(t *testing.T) {
	server, _ := setupTestServer(t)

	_, output, err := server.handleGet(context.Background(), nil, GetInput{UUID: "missing"})

	require.NoError(t, err)
	assert.False(t, output.Found)
	assert.Nil(t, output.VCon)
}

func TestHandleDelete(t *testing.T) {
	server, storage := setupTestServer(t)
	storage.records["uuid-1"] = &domain.VCon{UUID: "uuid-1"}

	_, output, err := server.handleDelete(context.Background(), nil, DeleteInput{UUID: "uuid-1"})

	require.NoError(t, err)
	assert.True(t, output.Deleted)
	assert.NotContains(t, storage.records, "uuid-1")
}

func TestHandleSearch(t *testing.T) {
	server, storage := setupTestServer(t)
	storage.records["uuid-1"] = &domain.VCon{UUID: "uuid-1"}
	storage.records["uuid-2"] = &domain.VCon{UUID: "uuid-2"}

	_, output, err := server.handleSearch(context.Background(), nil, SearchInput{})

	require.NoError(t, err)
	assert.Equal(t, 2, output.Count)
	assert.Len(t, output.Results, 2)
}

func TestHandleSearch_TimeBound(t *testing.T) {
	server, storage := setupTestServer(t)
	storage.records["old"] = &domain.VCon{
		UUID:      "old",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	storage.records["new"] = &domain.VCon{
		UUID:      "new",
		CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	input := SearchInput{CreatedAfter: "2025-01-01T00:00:00Z"}
	_, output, err := server.handleSearch(context.Background(), nil, input)

	require.NoError(t, err)
	require.Equal(t, 1, output.Count)
	assert.Contains(t, string(output.Results[0]), `"uuid":"new"`)
}

func TestHandleSearch_InvalidTimeBound(t *testing.T) {
	server, _ := setupTestServer(t)

	_, _, err := server.handleSearch(context.Background(), nil, SearchInput{CreatedAfter: "yesterday"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing created_after")
}

// ==================== Resource Tests ====================

func TestExtractRecordUUID(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{"valid", "vcon://records/uuid-1", "uuid-1"},
		{"list resource", "vcon://records", ""},
		{"wrong scheme", "file://records/uuid-1", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractRecordUUID(tt.uri))
		})
	}
}
