package services

import (
	"context"
	"testing"
	"time"

	"github.com/focushive/hivetimer/internal/adapters/memory"
	"github.com/focushive/hivetimer/internal/domain"
)

func newTestStatsService(t *testing.T) (*StatsService, *memory.DB) {
	t.Helper()
	store := memory.New()
	return NewStatsService(store, discardLogger()), store
}

// seedCompleted builds a session started at the given time, completes it
// after the planned duration and stores the terminal record.
func seedCompleted(t *testing.T, store *memory.DB, userID string, sessionType domain.SessionType, startedAt time.Time, planned time.Duration) *domain.FocusSession {
	t.Helper()
	session, err := domain.NewFocusSession(domain.StartOptions{
		UserID:          userID,
		Type:            sessionType,
		PlannedDuration: planned,
	}, startedAt)
	if err != nil {
		t.Fatalf("failed to build session: %v", err)
	}
	if err := session.Complete(startedAt.Add(planned)); err != nil {
		t.Fatalf("failed to complete session: %v", err)
	}
	if err := store.Sessions().Save(context.Background(), session); err != nil {
		t.Fatalf("failed to save session: %v", err)
	}
	return session
}

func TestStatsService_RecordSplitsFocusAndBreakMinutes(t *testing.T) {
	stats, _ := newTestStatsService(t)
	ctx := context.Background()

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	work, err := domain.NewFocusSession(domain.StartOptions{
		UserID:          "alice",
		Type:            domain.SessionTypeWork,
		PlannedDuration: 25 * time.Minute,
	}, start)
	if err != nil {
		t.Fatalf("failed to build session: %v", err)
	}
	if err := stats.RecordStarted(ctx, work); err != nil {
		t.Fatalf("failed to record start: %v", err)
	}
	if err := work.Complete(start.Add(25 * time.Minute)); err != nil {
		t.Fatalf("failed to complete: %v", err)
	}
	if err := stats.RecordCompleted(ctx, work); err != nil {
		t.Fatalf("failed to record completion: %v", err)
	}

	rest, err := domain.NewFocusSession(domain.StartOptions{
		UserID:          "alice",
		Type:            domain.SessionTypeBreak,
		PlannedDuration: 5 * time.Minute,
	}, start.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("failed to build session: %v", err)
	}
	if err := stats.RecordStarted(ctx, rest); err != nil {
		t.Fatalf("failed to record start: %v", err)
	}
	if err := rest.Complete(start.Add(35 * time.Minute)); err != nil {
		t.Fatalf("failed to complete: %v", err)
	}
	if err := stats.RecordCompleted(ctx, rest); err != nil {
		t.Fatalf("failed to record completion: %v", err)
	}

	daily, err := stats.Daily(ctx, "alice", start)
	if err != nil {
		t.Fatalf("failed to load daily stats: %v", err)
	}
	if daily.SessionsStarted != 2 || daily.SessionsCompleted != 2 {
		t.Errorf("expected 2/2 sessions, got %d/%d", daily.SessionsStarted, daily.SessionsCompleted)
	}
	if daily.TotalFocusMinutes != 25 || daily.TotalBreakMinutes != 5 {
		t.Errorf("expected 25 focus and 5 break minutes, got %d/%d", daily.TotalFocusMinutes, daily.TotalBreakMinutes)
	}
}

func TestStatsService_DailyReturnsZeroAggregateForEmptyDay(t *testing.T) {
	stats, _ := newTestStatsService(t)

	daily, err := stats.Daily(context.Background(), "alice", time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("failed to load daily stats: %v", err)
	}
	if daily == nil {
		t.Fatal("expected a zero-valued aggregate, got nil")
	}
	if daily.UserID != "alice" || daily.SessionsStarted != 0 || daily.TotalFocusMinutes != 0 {
		t.Errorf("expected empty aggregate for alice, got %+v", daily)
	}
}

func TestStatsService_WeeklyCoversSevenDays(t *testing.T) {
	stats, _ := newTestStatsService(t)
	ctx := context.Background()

	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	seedDay := func(day time.Time) {
		session, err := domain.NewFocusSession(domain.StartOptions{
			UserID:          "alice",
			Type:            domain.SessionTypeWork,
			PlannedDuration: 25 * time.Minute,
		}, day.Add(9*time.Hour))
		if err != nil {
			t.Fatalf("failed to build session: %v", err)
		}
		if err := session.Complete(day.Add(9*time.Hour + 25*time.Minute)); err != nil {
			t.Fatalf("failed to complete: %v", err)
		}
		if err := stats.RecordCompleted(ctx, session); err != nil {
			t.Fatalf("failed to record completion: %v", err)
		}
	}

	// Two days inside the window, one after it and one before it.
	seedDay(monday)
	seedDay(monday.AddDate(0, 0, 6))
	seedDay(monday.AddDate(0, 0, 7))
	seedDay(monday.AddDate(0, 0, -1))

	days, err := stats.Weekly(ctx, "alice", monday)
	if err != nil {
		t.Fatalf("failed to load weekly stats: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 recorded days in the week, got %d", len(days))
	}
	for _, day := range days {
		if day.Date.Before(monday) || day.Date.After(monday.AddDate(0, 0, 6)) {
			t.Errorf("day %s outside the requested week", day.Date.Format("2006-01-02"))
		}
	}
}

func TestStatsService_MonthlyCoversCalendarMonth(t *testing.T) {
	stats, _ := newTestStatsService(t)
	ctx := context.Background()

	seed := func(day time.Time) {
		session, err := domain.NewFocusSession(domain.StartOptions{
			UserID:          "alice",
			Type:            domain.SessionTypeWork,
			PlannedDuration: 25 * time.Minute,
		}, day)
		if err != nil {
			t.Fatalf("failed to build session: %v", err)
		}
		if err := session.Complete(day.Add(25 * time.Minute)); err != nil {
			t.Fatalf("failed to complete: %v", err)
		}
		if err := stats.RecordCompleted(ctx, session); err != nil {
			t.Fatalf("failed to record completion: %v", err)
		}
	}

	seed(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))
	seed(time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC))
	seed(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	days, err := stats.Monthly(ctx, "alice", 2026, time.February)
	if err != nil {
		t.Fatalf("failed to load monthly stats: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 recorded days in february, got %d", len(days))
	}
}

func TestStatsService_StreakFromCompletedSessions(t *testing.T) {
	stats, store := newTestStatsService(t)
	ctx := context.Background()

	today := domain.DateOf(time.Now().UTC())

	// Three consecutive days ending today, plus an isolated day further
	// back that must not extend the current run.
	seedCompleted(t, store, "alice", domain.SessionTypeWork, today.Add(9*time.Hour), 25*time.Minute)
	seedCompleted(t, store, "alice", domain.SessionTypeWork, today.AddDate(0, 0, -1).Add(9*time.Hour), 25*time.Minute)
	seedCompleted(t, store, "alice", domain.SessionTypeWork, today.AddDate(0, 0, -2).Add(9*time.Hour), 25*time.Minute)
	seedCompleted(t, store, "alice", domain.SessionTypeWork, today.AddDate(0, 0, -10).Add(9*time.Hour), 25*time.Minute)

	info, err := stats.Streak(ctx, "alice")
	if err != nil {
		t.Fatalf("failed to load streak: %v", err)
	}
	if info.CurrentStreak != 3 {
		t.Errorf("expected current streak 3, got %d", info.CurrentStreak)
	}
	if info.LongestStreak != 3 {
		t.Errorf("expected longest streak 3, got %d", info.LongestStreak)
	}
}

func TestStatsService_StreakEmptyHistory(t *testing.T) {
	stats, _ := newTestStatsService(t)

	info, err := stats.Streak(context.Background(), "alice")
	if err != nil {
		t.Fatalf("failed to load streak: %v", err)
	}
	if info.CurrentStreak != 0 || info.LongestStreak != 0 {
		t.Errorf("expected zero streaks, got %+v", info)
	}
	if info.Trend != domain.TrendStable {
		t.Errorf("expected STABLE trend with no history, got %s", info.Trend)
	}
}
