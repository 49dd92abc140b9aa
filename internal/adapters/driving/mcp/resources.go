package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/vconstore/internal/core/domain"
)

// uriScheme is the custom URI scheme for vconstore resources.
const uriScheme = "vcon://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource listing every stored record.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "records",
		Name:        "records",
		Description: "List of all stored vCon records",
		MIMEType:    "application/json",
	}, s.handleRecordsResource)

	// Template for a single record.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "records/{uuid}",
		Name:        "record",
		Description: "A stored vCon record as JSON",
		MIMEType:    "application/json",
	}, s.handleRecordResource)
}

// handleRecordsResource returns a summary list of all stored records.
func (s *Server) handleRecordsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	vcons := s.ports.Storage.Search(ctx, domain.SearchQuery{})

	type recordInfo struct {
		UUID      string `json:"uuid"`
		Subject   string `json:"subject,omitempty"`
		CreatedAt string `json:"created_at"`
	}

	infos := make([]recordInfo, len(vcons))
	for i, vcon := range vcons {
		infos[i] = recordInfo{
			UUID:      vcon.UUID,
			Subject:   vcon.Subject,
			CreatedAt: vcon.CreatedAt.Format(time.RFC3339),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling records: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleRecordResource returns one record as JSON.
func (s *Server) handleRecordResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract uuid from URI: vcon://records/{uuid}
	uuid := extractRecordUUID(req.Params.URI)
	if uuid == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	vcon := s.ports.Storage.Get(ctx, uuid)
	if vcon == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := json.MarshalIndent(vcon, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling record: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRecordUUID extracts the uuid from a URI like vcon://records/{uuid}.
func extractRecordUUID(uri string) string {
	const prefix = uriScheme + "records/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	return strings.TrimPrefix(uri, prefix)
}
