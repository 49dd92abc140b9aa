// Package mcp provides an MCP (Model Context Protocol) server adapter for
// vconstore. It lets AI assistants save, fetch, delete and search vCon
// conversation records.
package mcp

import "errors"

// ErrMissingStorageService is returned when the storage service is not provided.
var ErrMissingStorageService = errors.New("mcp: storage service is required")
