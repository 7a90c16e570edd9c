package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/focushive/hivetimer/internal/adapters/httpapi"
	"github.com/focushive/hivetimer/internal/adapters/identity"
	"github.com/focushive/hivetimer/internal/adapters/postgres"
	"github.com/focushive/hivetimer/internal/adapters/storage"
	"github.com/focushive/hivetimer/internal/broadcast"
	"github.com/focushive/hivetimer/internal/config"
	"github.com/focushive/hivetimer/internal/ports"
	"github.com/focushive/hivetimer/internal/services"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the timer server",
	Long: `Run the hivetimer HTTP server. Clients connect over REST for timer
operations and over server-sent events for live updates.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := appConfig.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	store, err := openStorage(appConfig)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	verifier, opts, err := buildVerifier(ctx, &appConfig.Auth)
	if err != nil {
		return err
	}

	hub := broadcast.NewHub(logger)
	defer hub.Close()

	stats := services.NewStatsService(store, logger)
	timers := services.NewTimerService(store, hub, stats, logger)
	defer timers.Close()
	settings := services.NewSettingsService(store, logger)

	server := httpapi.New(timers, stats, settings, hub, verifier, logger, opts...)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // event streams are long-lived
		IdleTimeout:  120 * time.Second,
	}

	// Sweep abandoned sessions in the background.
	go runSweeper(ctx, timers, appConfig.Server)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "backend", appConfig.Storage.Backend, "auth", appConfig.Auth.Mode)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}

// openStorage opens the configured storage backend.
func openStorage(cfg *config.Config) (ports.Storage, error) {
	switch cfg.Storage.Backend {
	case "", "sqlite":
		if err := os.MkdirAll(cfg.Storage.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return storage.New(config.GetDBPath(cfg))
	case "postgres":
		if cfg.Storage.ConnString == "" {
			return nil, fmt.Errorf("storage.conn_string is required for the postgres backend")
		}
		return postgres.Open(cfg.Storage.ConnString)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// buildVerifier constructs the token verifier for the configured auth mode.
func buildVerifier(ctx context.Context, cfg *config.AuthConfig) (ports.TokenVerifier, []httpapi.Option, error) {
	switch cfg.Mode {
	case "oidc":
		if cfg.Issuer == "" || cfg.ClientID == "" {
			return nil, nil, fmt.Errorf("auth.issuer and auth.client_id are required for oidc mode")
		}
		verifier, err := identity.NewOIDCVerifier(ctx, cfg.Issuer, cfg.ClientID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to set up oidc: %w", err)
		}
		return verifier, nil, nil
	case "static":
		if len(cfg.Tokens) == 0 {
			return nil, nil, fmt.Errorf("auth.tokens is required for static mode")
		}
		return identity.NewStaticVerifier(cfg.Tokens), nil, nil
	case "", "disabled":
		return nil, []httpapi.Option{httpapi.WithoutAuth()}, nil
	default:
		return nil, nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}

// runSweeper cancels sessions abandoned past the stale horizon.
func runSweeper(ctx context.Context, timers *services.TimerService, cfg config.ServerConfig) {
	horizon := time.Duration(cfg.StaleHorizon)
	if horizon <= 0 {
		horizon = 4 * time.Hour
	}
	every := time.Duration(cfg.SweepEvery)
	if every <= 0 {
		every = 5 * time.Minute
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := timers.ExpireStale(ctx, horizon)
			if err != nil {
				logger.Warn("expiry sweep failed", "error", err)
				continue
			}
			if swept > 0 {
				logger.Info("swept stale sessions", "count", swept)
			}
		}
	}
}
