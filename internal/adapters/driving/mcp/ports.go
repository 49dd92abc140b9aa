package mcp

import (
	"github.com/custodia-labs/vconstore/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Storage provides the vCon save/get/delete/search operations.
	Storage driving.StorageService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Storage == nil {
		return ErrMissingStorageService
	}
	return nil
}
