package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vconstore/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  vconstore mcp serve

  # HTTP mode
  vconstore mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Storage: storageService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	ctx := cmd.Context()
	if port > 0 {
		return server.RunHTTP(ctx, fmt.Sprintf(":%d", port))
	}
	return server.Run(ctx)
}
