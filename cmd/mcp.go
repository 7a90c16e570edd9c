package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/focushive/hivetimer/internal/adapters/mcp"
	"github.com/focushive/hivetimer/internal/broadcast"
	"github.com/focushive/hivetimer/internal/services"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server for integration with AI
assistants. The server communicates via stdio and exposes tools for
starting, controlling, and inspecting focus sessions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		store, err := openStorage(appConfig)
		if err != nil {
			return err
		}
		defer store.Close()

		hub := broadcast.NewHub(logger)
		defer hub.Close()

		stats := services.NewStatsService(store, logger)
		timers := services.NewTimerService(store, hub, stats, logger)
		defer timers.Close()

		user := appConfig.MCP.User
		if appConfig.Client.User != "" {
			user = appConfig.Client.User
		}

		server := mcp.NewServer(timers, stats, user)
		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}
