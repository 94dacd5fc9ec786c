package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teatrofeed/teatrofeed/internal/adapters/driven/feedfile"
	"github.com/teatrofeed/teatrofeed/internal/adapters/driving/mcp"
	"github.com/teatrofeed/teatrofeed/internal/clock"
	"github.com/teatrofeed/teatrofeed/internal/core/services"
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

The server exposes the aggregated feed read-only: list_events and
search_events tools plus a teatrofeed://feed resource. It never runs
the pipeline itself, so aggregate with 'teatrofeed run' first.

By default the server communicates over stdio using JSON-RPC and can
be used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default, for Claude Desktop)
  teatrofeed mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  teatrofeed mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "teatrofeed": {
        "command": "/path/to/teatrofeed",
        "args": ["mcp", "serve"]
      }
    }
  }`,
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

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := feedfile.New(cfg.Feed.Output, cfg.Feed.Pretty, clock.NewSystem())
	ports := &mcp.Ports{
		Reader: services.NewReader(store),
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
