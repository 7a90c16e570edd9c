// Package mcp provides the MCP (Model Context Protocol) server implementation.
// It exposes the focus timer to local agent tooling on behalf of one
// configured user.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/focushive/hivetimer/internal/domain"
	"github.com/focushive/hivetimer/internal/services"
)

// Server implements the MCP server using mark3labs/mcp-go.
type Server struct {
	server *server.MCPServer
	timers *services.TimerService
	stats  *services.StatsService
	userID string
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new MCP server acting as the given user.
func NewServer(timers *services.TimerService, stats *services.StatsService, userID string) *Server {
	s := &Server{
		timers: timers,
		stats:  stats,
		userID: userID,
	}

	s.server = server.NewMCPServer(
		"hivetimer",
		"1.0.0",
		server.WithLogging(),
	)

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	startTool := mcp.NewTool(
		"start_session",
		mcp.WithDescription("Start a new focus session"),
		mcp.WithString(
			"session_type",
			mcp.Description("Session type: WORK, BREAK, STUDY, FOCUS (default WORK)"),
			mcp.Enum("WORK", "BREAK", "STUDY", "FOCUS"),
		),
		mcp.WithNumber(
			"duration_minutes",
			mcp.Description("Planned duration in minutes (default: 25)"),
		),
		mcp.WithString(
			"title",
			mcp.Description("Optional session title"),
		),
		mcp.WithString(
			"hive_id",
			mcp.Description("Optional hive to broadcast the session to"),
		),
	)
	s.server.AddTool(startTool, s.handleStartSession)

	s.server.AddTool(
		mcp.NewTool(
			"get_timer_state",
			mcp.WithDescription("Get the current timer state: active session, remaining time, and today's stats"),
		),
		s.handleGetTimerState,
	)

	s.server.AddTool(
		mcp.NewTool(
			"pause_session",
			mcp.WithDescription("Pause the running focus session"),
		),
		s.handlePauseSession,
	)

	s.server.AddTool(
		mcp.NewTool(
			"resume_session",
			mcp.WithDescription("Resume the paused focus session"),
		),
		s.handleResumeSession,
	)

	s.server.AddTool(
		mcp.NewTool(
			"complete_session",
			mcp.WithDescription("Complete the current focus session"),
		),
		s.handleCompleteSession,
	)

	s.server.AddTool(
		mcp.NewTool(
			"cancel_session",
			mcp.WithDescription("Cancel the current focus session without recording it"),
		),
		s.handleCancelSession,
	)

	metricsTool := mcp.NewTool(
		"report_distraction",
		mcp.WithDescription("Report distraction signals for the running session; the productivity score is re-derived"),
		mcp.WithNumber(
			"tab_switches",
			mcp.Description("Tab or window switches since the last report"),
		),
		mcp.WithNumber(
			"distraction_minutes",
			mcp.Description("Minutes spent distracted since the last report"),
		),
		mcp.WithNumber(
			"focus_breaks",
			mcp.Description("Times focus was fully broken since the last report"),
		),
	)
	s.server.AddTool(metricsTool, s.handleReportDistraction)

	s.server.AddTool(
		mcp.NewTool(
			"get_streak",
			mcp.WithDescription("Get the current and longest daily completion streaks and the productivity trend"),
		),
		s.handleGetStreak,
	)
}

// Start begins serving MCP requests via stdio.
func (s *Server) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	return server.ServeStdio(s.server)
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// IsRunning returns true if the server is active.
func (s *Server) IsRunning() bool {
	if s.ctx == nil {
		return false
	}
	return s.ctx.Err() == nil
}

func sessionResult(session *domain.FocusSession) (*mcp.CallToolResult, error) {
	snap := session.Snapshot(time.Now())
	jsonData, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// activeSession resolves the user's current session id for the tools that
// operate on "the" session.
func (s *Server) activeSession(ctx context.Context) (*domain.FocusSession, error) {
	session, err := s.timers.Current(ctx, s.userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("no active session")
	}
	return session, nil
}

// handleStartSession handles the start_session tool.
func (s *Server) handleStartSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionType, err := domain.ParseSessionType(request.GetString("session_type", "WORK"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	minutes := int(request.GetFloat("duration_minutes", 25))
	var hiveID *string
	if h := request.GetString("hive_id", ""); h != "" {
		hiveID = &h
	}

	session, err := s.timers.Start(ctx, domain.StartOptions{
		UserID:          s.userID,
		HiveID:          hiveID,
		Type:            sessionType,
		PlannedDuration: time.Duration(minutes) * time.Minute,
		Title:           request.GetString("title", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start session: %v", err)), nil
	}

	return sessionResult(session)
}

// handleGetTimerState handles the get_timer_state tool.
func (s *Server) handleGetTimerState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sync, err := s.timers.Sync(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sync timer: %w", err)
	}

	today, err := s.stats.Daily(ctx, s.userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to load today's stats: %w", err)
	}

	result := map[string]any{
		"timer": sync,
		"today": today,
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// handlePauseSession handles the pause_session tool.
func (s *Server) handlePauseSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.activeSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	paused, err := s.timers.Pause(ctx, session.ID, s.userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to pause session: %v", err)), nil
	}
	return sessionResult(paused)
}

// handleResumeSession handles the resume_session tool.
func (s *Server) handleResumeSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.activeSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resumed, err := s.timers.Resume(ctx, session.ID, s.userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to resume session: %v", err)), nil
	}
	return sessionResult(resumed)
}

// handleCompleteSession handles the complete_session tool.
func (s *Server) handleCompleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.activeSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	completed, err := s.timers.Complete(ctx, session.ID, s.userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to complete session: %v", err)), nil
	}
	return sessionResult(completed)
}

// handleCancelSession handles the cancel_session tool.
func (s *Server) handleCancelSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.activeSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cancelled, err := s.timers.Cancel(ctx, session.ID, s.userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to cancel session: %v", err)), nil
	}
	return sessionResult(cancelled)
}

// handleReportDistraction handles the report_distraction tool.
func (s *Server) handleReportDistraction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.activeSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	updated, err := s.timers.UpdateMetrics(ctx, session.ID, s.userID, domain.MetricsUpdate{
		TabSwitches:        int(request.GetFloat("tab_switches", 0)),
		DistractionMinutes: int(request.GetFloat("distraction_minutes", 0)),
		FocusBreaks:        int(request.GetFloat("focus_breaks", 0)),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to report distraction: %v", err)), nil
	}
	return sessionResult(updated)
}

// handleGetStreak handles the get_streak tool.
func (s *Server) handleGetStreak(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	streak, err := s.stats.Streak(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load streak: %w", err)
	}

	jsonData, err := json.MarshalIndent(streak, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal streak: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
