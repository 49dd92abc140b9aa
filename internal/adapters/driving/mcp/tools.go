package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/vconstore/internal/core/domain"
)

// SaveInput is the input schema for the vcon_save tool.
type SaveInput struct {
	VCon json.RawMessage `json:"vcon" jsonschema:"the vCon document to persist"`
}

// SaveOutput is the output schema for the vcon_save tool.
type SaveOutput struct {
	Saved bool   `json:"saved"`
	UUID  string `json:"uuid,omitempty"`
}

// GetInput is the input schema for the vcon_get tool.
type GetInput struct {
	UUID string `json:"uuid" jsonschema:"the uuid of the vCon to fetch"`
}

// GetOutput is the output schema for the vcon_get tool.
type GetOutput struct {
	Found bool            `json:"found"`
	VCon  json.RawMessage `json:"vcon,omitempty"`
}

// DeleteInput is the input schema for the vcon_delete tool.
type DeleteInput struct {
	UUID string `json:"uuid" jsonschema:"the uuid of the vCon to delete"`
}

// DeleteOutput is the output schema for the vcon_delete tool.
type DeleteOutput struct {
	Deleted bool `json:"deleted"`
}

// SearchInput is the input schema for the vcon_search tool.
type SearchInput struct {
	Subject       string `json:"subject,omitempty" jsonschema:"case-insensitive subject substring"`
	CreatedAfter  string `json:"created_after,omitempty" jsonschema:"RFC 3339 creation time lower bound"`
	CreatedBefore string `json:"created_before,omitempty" jsonschema:"RFC 3339 creation time upper bound"`
}

// SearchOutput is the output schema for the vcon_search tool.
type SearchOutput struct {
	Results []json.RawMessage `json:"results"`
	Count   int               `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "vcon_save",
		Description: "Persist a vCon conversation record",
	}, s.handleSave)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "vcon_get",
		Description: "Fetch a vCon conversation record by uuid",
	}, s.handleGet)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "vcon_delete",
		Description: "Delete a vCon conversation record by uuid",
	}, s.handleDelete)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "vcon_search",
		Description: "Search vCon conversation records by header criteria",
	}, s.handleSearch)
}

// handleSave handles the vcon_save tool invocation.
func (s *Server) handleSave(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SaveInput,
) (*mcp.CallToolResult, SaveOutput, error) {
	var vcon domain.VCon
	if err := json.Unmarshal(input.VCon, &vcon); err != nil {
		return nil, SaveOutput{}, fmt.Errorf("parsing vCon document: %w", err)
	}

	saved := s.ports.Storage.Save(ctx, &vcon)
	return nil, SaveOutput{Saved: saved, UUID: vcon.UUID}, nil
}

// handleGet handles the vcon_get tool invocation.
func (s *Server) handleGet(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetInput,
) (*mcp.CallToolResult, GetOutput, error) {
	vcon := s.ports.Storage.Get(ctx, input.UUID)
	if vcon == nil {
		return nil, GetOutput{Found: false}, nil
	}

	data, err := json.Marshal(vcon)
	if err != nil {
		return nil, GetOutput{}, fmt.Errorf("encoding vCon: %w", err)
	}
	return nil, GetOutput{Found: true, VCon: data}, nil
}

// handleDelete handles the vcon_delete tool invocation.
func (s *Server) handleDelete(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteInput,
) (*mcp.CallToolResult, DeleteOutput, error) {
	deleted := s.ports.Storage.Delete(ctx, input.UUID)
	return nil, DeleteOutput{Deleted: deleted}, nil
}

// handleSearch handles the vcon_search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	query := domain.SearchQuery{Subject: input.Subject}

	if input.CreatedAfter != "" {
		t, err := time.Parse(time.RFC3339, input.CreatedAfter)
		if err != nil {
			return nil, SearchOutput{}, fmt.Errorf("parsing created_after: %w", err)
		}
		query.CreatedAfter = t
	}
	if input.CreatedBefore != "" {
		t, err := time.Parse(time.RFC3339, input.CreatedBefore)
		if err != nil {
			return nil, SearchOutput{}, fmt.Errorf("parsing created_before: %w", err)
		}
		query.CreatedBefore = t
	}

	results := s.ports.Storage.Search(ctx, query)

	output := SearchOutput{
		Results: make([]json.RawMessage, 0, len(results)),
		Count:   len(results),
	}
	for _, vcon := range results {
		data, err := json.Marshal(vcon)
		if err != nil {
			return nil, SearchOutput{}, fmt.Errorf("encoding vCon: %w", err)
		}
		output.Results = append(output.Results, data)
	}

	return nil, output, nil
}
