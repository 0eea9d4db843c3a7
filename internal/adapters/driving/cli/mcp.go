package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nutrisense/internal/adapters/driving/mcp"
	"github.com/custodia-labs/nutrisense/internal/metrics"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can set goals,
log food and read progress.

By default, the server communicates over stdio using JSON-RPC. Use --port
to serve streamable HTTP instead; Prometheus metrics are then available on
/metrics.

Tool calls are throttled by mcp.rate_limit and mcp.burst.

Examples:
  # Stdio mode (for desktop assistants)
  nutrisense mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  nutrisense mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "nutrisense": {
        "command": "/path/to/nutrisense",
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

	server, err := newMCPServer()
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

func newMCPServer() (*mcp.Server, error) {
	ports := &mcp.Ports{
		Goal:     goalService,
		Intake:   intakeService,
		Progress: progressService,
		Profile:  profileService,
	}
	return mcp.NewServer(ports,
		mcp.WithDefaultLocation(appConfig.Location()),
		mcp.WithRateLimit(appConfig.MCP.RateLimit, appConfig.MCP.Burst),
		mcp.WithMetrics(metrics.New(nil)),
	)
}
