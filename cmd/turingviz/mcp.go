package main

import (
	"fmt"

	"github.com/aretw0/turingviz"
	"github.com/aretw0/turingviz/pkg/adapters/mcp"
	"github.com/aretw0/turingviz/pkg/adapters/memory"
	"github.com/aretw0/turingviz/pkg/persistence/middleware"
	"github.com/aretw0/turingviz/pkg/runner"
	"github.com/aretw0/turingviz/pkg/session"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the machines as MCP tools and resources, so agents can list,
describe, run and step machines and render their diagrams.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		maxTrace, _ := cmd.Flags().GetInt("max-trace")

		// Logs go to stderr so they never corrupt JSON-RPC on stdout.
		e, err := newEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		store := middleware.Chain(memory.NewStore(),
			middleware.NewLoggingMiddleware(e.logger),
			middleware.NewTraceLimitMiddleware(maxTrace),
		)
		mgr := session.NewManager(store, e.loader,
			session.WithLogger(e.logger),
			session.WithMachineOptions(turingviz.WithTraceLimit(maxTrace)),
		)
		srv := mcp.NewServer(mgr, mcp.WithLogger(e.logger))

		switch transport {
		case "stdio":
			e.logger.Info("starting MCP server", "transport", transport)
			return srv.ServeStdio()
		case "sse":
			e.logger.Info("starting MCP server", "transport", transport, "port", port)
			ctx, stop := runner.SignalContext(cmd.Context())
			defer stop()
			if err := srv.ServeSSE(ctx, port); err != nil {
				return err
			}
			e.logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport %q; supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().Int("max-trace", 1000, "Undo checkpoints kept per session (0 is unlimited)")
}
