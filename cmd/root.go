// Package cmd provides the CLI commands for the hivetimer application.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/focushive/hivetimer/internal/config"
)

var (
	// Version info (set at build time via ldflags)
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"

	// Global flags
	serverURLFlag string
	userFlag      string
	tokenFlag     string
	jsonOutput    bool
	verbose       bool

	// Global dependencies
	appConfig *config.Config
	logger    *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hivetimer",
	Short: "Hivetimer - a focus session timer with real-time sync",
	Long: `Hivetimer is a focus session timer. Run "hivetimer serve" to host the
timer server, then drive sessions from any device with the start, pause,
resume, complete, and watch commands. Sessions tagged with a hive are
broadcast live to everyone watching that hive.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURLFlag, "server", "", "Timer server URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "User ID to act as (default from config)")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "Bearer token for the server (default from config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("Hivetimer\nVersion: {{.Version}}\n")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(hiveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(settingsCmd)
}

// initialize loads configuration and sets up logging.
func initialize() error {
	var err error
	appConfig, err = config.Load()
	if err != nil {
		// If config loading fails, use defaults
		appConfig = config.DefaultConfig()
	}

	// Flag overrides for client commands
	if serverURLFlag != "" {
		appConfig.Client.ServerURL = serverURLFlag
	}
	if userFlag != "" {
		appConfig.Client.User = userFlag
	}
	if tokenFlag != "" {
		appConfig.Client.Token = tokenFlag
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return nil
}

// api builds an HTTP client for the configured server.
func api() *Client {
	return NewAPIClient(appConfig.Client.ServerURL, appConfig.Client.Token, appConfig.Client.User)
}
