// Package httpapi is the driving HTTP adapter: it routes REST and SSE
// requests to the timer, stats and settings services.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/focushive/hivetimer/internal/broadcast"
	"github.com/focushive/hivetimer/internal/ports"
	"github.com/focushive/hivetimer/internal/services"
)

// Server routes requests to application services.
type Server struct {
	timers   *services.TimerService
	stats    *services.StatsService
	settings *services.SettingsService
	hub      *broadcast.Hub
	verifier ports.TokenVerifier
	logger   *slog.Logger

	// disableAuth swaps bearer verification for the X-User-ID header.
	// Development and tests only.
	disableAuth bool
}

// Option configures a Server.
type Option func(*Server)

// WithoutAuth disables token verification and trusts the X-User-ID header.
func WithoutAuth() Option {
	return func(s *Server) { s.disableAuth = true }
}

// New creates a Server wired to the given application services.
func New(timers *services.TimerService, stats *services.StatsService, settings *services.SettingsService, hub *broadcast.Hub, verifier ports.TokenVerifier, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		timers:   timers,
		stats:    stats,
		settings: settings,
		hub:      hub,
		verifier: verifier,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /sessions", s.handleStart)
	api.HandleFunc("GET /sessions/current", s.handleCurrent)
	api.HandleFunc("GET /sessions/sync", s.handleSync)
	api.HandleFunc("GET /sessions/history", s.handleHistory)
	api.HandleFunc("POST /sessions/{id}/pause", s.handlePause)
	api.HandleFunc("POST /sessions/{id}/resume", s.handleResume)
	api.HandleFunc("POST /sessions/{id}/complete", s.handleComplete)
	api.HandleFunc("POST /sessions/{id}/cancel", s.handleCancel)
	api.HandleFunc("PUT /sessions/{id}/metrics", s.handleMetrics)

	api.HandleFunc("GET /hives/{id}/sessions", s.handleHiveSessions)
	api.HandleFunc("GET /hives/{id}/events", s.handleHiveEvents)

	api.HandleFunc("GET /stats/daily", s.handleStatsDaily)
	api.HandleFunc("GET /stats/weekly", s.handleStatsWeekly)
	api.HandleFunc("GET /stats/monthly", s.handleStatsMonthly)
	api.HandleFunc("GET /stats/streak", s.handleStatsStreak)

	api.HandleFunc("GET /settings", s.handleGetSettings)
	api.HandleFunc("PUT /settings", s.handlePutSettings)

	api.HandleFunc("GET /events", s.handleUserEvents)

	root := http.NewServeMux()
	// Health stays outside auth so load balancers can probe it.
	root.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	root.Handle("/api/", http.StripPrefix("/api", s.authMiddleware(api)))

	return s.loggingMiddleware(root)
}
