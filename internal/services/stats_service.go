package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/focushive/hivetimer/internal/domain"
	"github.com/focushive/hivetimer/internal/ports"
)

// trendWindow is how many recent rated sessions feed the trend classifier.
const trendWindow = 20

// StatsService derives daily, weekly and monthly productivity aggregates
// and streaks from the session history. Aggregates are keyed by the
// session's start date, so a session crossing midnight counts toward the
// day it began.
type StatsService struct {
	storage ports.Storage
	logger  *slog.Logger
	now     func() time.Time
}

// NewStatsService creates a stats service.
func NewStatsService(storage ports.Storage, logger *slog.Logger) *StatsService {
	return &StatsService{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// RecordStarted counts a session toward sessionsStarted the moment it is
// created, so in-progress sessions already show up as started.
func (s *StatsService) RecordStarted(ctx context.Context, session *domain.FocusSession) error {
	date := domain.DateOf(session.StartedAt)
	err := s.storage.Stats().Upsert(ctx, session.UserID, date, domain.StatsDelta{SessionsStarted: 1})
	if err != nil {
		return fmt.Errorf("failed to record session start: %w", err)
	}
	return nil
}

// RecordCompleted folds a completed session into its start date's
// aggregate. Cancelled sessions never reach this path.
func (s *StatsService) RecordCompleted(ctx context.Context, session *domain.FocusSession) error {
	delta := domain.StatsDelta{SessionsCompleted: 1}
	if session.Type.IsFocus() {
		delta.FocusMinutes = session.ActualMinutes()
	} else {
		delta.BreakMinutes = session.ActualMinutes()
	}

	date := domain.DateOf(session.StartedAt)
	if err := s.storage.Stats().Upsert(ctx, session.UserID, date, delta); err != nil {
		return fmt.Errorf("failed to record session completion: %w", err)
	}

	s.logger.Debug("recorded completed session",
		"user_id", session.UserID,
		"session_id", session.ID,
		"date", date.Format("2006-01-02"),
		"focus_minutes", delta.FocusMinutes,
		"break_minutes", delta.BreakMinutes)
	return nil
}

// Daily returns one day's aggregate. Days with no recorded sessions yield
// a zero-valued aggregate rather than an error.
func (s *StatsService) Daily(ctx context.Context, userID string, date time.Time) (*domain.ProductivityStats, error) {
	stats, err := s.storage.Stats().FindByUserAndDate(ctx, userID, domain.DateOf(date))
	if err != nil {
		return nil, fmt.Errorf("failed to load daily stats: %w", err)
	}
	if stats == nil {
		return &domain.ProductivityStats{UserID: userID, Date: domain.DateOf(date)}, nil
	}
	return stats, nil
}

// Weekly returns the aggregates for the seven days starting at start.
func (s *StatsService) Weekly(ctx context.Context, userID string, start time.Time) ([]*domain.ProductivityStats, error) {
	from := domain.DateOf(start)
	to := from.AddDate(0, 0, 6)
	stats, err := s.storage.Stats().FindByUserAndDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly stats: %w", err)
	}
	return stats, nil
}

// Monthly returns the aggregates for one calendar month.
func (s *StatsService) Monthly(ctx context.Context, userID string, year int, month time.Month) ([]*domain.ProductivityStats, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	stats, err := s.storage.Stats().FindByUserAndDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly stats: %w", err)
	}
	return stats, nil
}

// Streak computes the user's current and longest consecutive-day runs and
// the trend of recent productivity scores.
func (s *StatsService) Streak(ctx context.Context, userID string) (domain.StreakInfo, error) {
	days, err := s.storage.Sessions().FindCompletedDays(ctx, userID)
	if err != nil {
		return domain.StreakInfo{}, fmt.Errorf("failed to load completed days: %w", err)
	}
	scores, err := s.storage.Sessions().FindRecentScores(ctx, userID, trendWindow)
	if err != nil {
		return domain.StreakInfo{}, fmt.Errorf("failed to load recent scores: %w", err)
	}

	return domain.StreakInfo{
		CurrentStreak: domain.CurrentStreak(days),
		LongestStreak: domain.LongestStreak(days),
		Trend:         domain.ClassifyTrend(scores),
	}, nil
}
