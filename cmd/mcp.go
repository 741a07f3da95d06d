package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marianecozta/Pomodoro/internal/adapters/mcp"
	"github.com/marianecozta/Pomodoro/internal/ports"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server for integration with AI assistants.
The server runs its own timer and task list, and talks JSON-RPC over stdio.
Nothing but protocol messages is written to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.config.MCP.Enabled {
			return fmt.Errorf("MCP server is disabled in %s (mcp.enabled)", app.configPath)
		}

		ctx, cancel := context.WithCancel(context.Background())
		wait := startController(ctx)
		defer wait()
		defer cancel()

		var server ports.MCPHandler = mcp.NewServer(app.state, Version, app.logger)
		stopOnSignal(ctx, setupSignalHandler(), server)

		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}

// stopOnSignal stops server once signals is done. It gives up when ctx ends.
func stopOnSignal(ctx, signals context.Context, server ports.MCPHandler) {
	go func() {
		select {
		case <-signals.Done():
			app.logger.Info("interrupted, stopping MCP server")
			if err := server.Stop(); err != nil {
				app.logger.Warn("failed to stop MCP server", "error", err)
			}
		case <-ctx.Done():
		}
	}()
}
