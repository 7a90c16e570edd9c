package integration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/focushive/hivetimer/internal/adapters/storage"
	"github.com/focushive/hivetimer/internal/broadcast"
	"github.com/focushive/hivetimer/internal/domain"
	"github.com/focushive/hivetimer/internal/ports"
	"github.com/focushive/hivetimer/internal/services"
)

// setupStack wires sqlite storage, the broadcast hub, and the services the
// way the serve command does.
func setupStack(t *testing.T) (ports.Storage, *broadcast.Hub, *services.TimerService, *services.StatsService) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := storage.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := broadcast.NewHub(logger)
	t.Cleanup(hub.Close)

	stats := services.NewStatsService(store, logger)
	timers := services.NewTimerService(store, hub, stats, logger)
	t.Cleanup(timers.Close)

	return store, hub, timers, stats
}

func waitForEvent(t *testing.T, sub *broadcast.Subscription, want domain.EventType) domain.TimerEvent {
	t.Helper()
	select {
	case event := <-sub.C:
		if event.Type != want {
			t.Fatalf("expected %s event, got %s", want, event.Type)
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s event", want)
		return domain.TimerEvent{}
	}
}

func TestFullSessionLifecycle(t *testing.T) {
	_, hub, timers, stats := setupStack(t)
	ctx := context.Background()

	sub := hub.Subscribe(domain.UserChannel("alice"))
	defer sub.Close()

	// 1. Start a session.
	session, err := timers.Start(ctx, domain.StartOptions{
		UserID:          "alice",
		Type:            domain.SessionTypeWork,
		PlannedDuration: 25 * time.Minute,
		Title:           "integration",
	})
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	if session.Status != domain.SessionStatusActive {
		t.Errorf("expected ACTIVE status, got %v", session.Status)
	}
	waitForEvent(t, sub, domain.EventStarted)

	// 2. A second start must be rejected while the first is running.
	if _, err := timers.Start(ctx, domain.StartOptions{
		UserID:          "alice",
		Type:            domain.SessionTypeWork,
		PlannedDuration: 25 * time.Minute,
	}); !errors.Is(err, domain.ErrSessionConflict) {
		t.Errorf("expected ErrSessionConflict, got %v", err)
	}

	// 3. Pause and resume.
	paused, err := timers.Pause(ctx, session.ID, "alice")
	if err != nil {
		t.Fatalf("failed to pause: %v", err)
	}
	if paused.Status != domain.SessionStatusPaused {
		t.Errorf("expected PAUSED status, got %v", paused.Status)
	}
	waitForEvent(t, sub, domain.EventPaused)

	resumed, err := timers.Resume(ctx, session.ID, "alice")
	if err != nil {
		t.Fatalf("failed to resume: %v", err)
	}
	if resumed.Interruptions != 1 {
		t.Errorf("expected 1 interruption, got %d", resumed.Interruptions)
	}
	waitForEvent(t, sub, domain.EventResumed)

	// 4. Report distraction metrics.
	updated, err := timers.UpdateMetrics(ctx, session.ID, "alice", domain.MetricsUpdate{
		TabSwitches:        4,
		DistractionMinutes: 3,
	})
	if err != nil {
		t.Fatalf("failed to update metrics: %v", err)
	}
	if updated.ProductivityScore == nil || *updated.ProductivityScore != 90 {
		t.Errorf("expected productivity score 90, got %v", updated.ProductivityScore)
	}
	waitForEvent(t, sub, domain.EventProductivityUpdated)

	// 5. Complete and check the daily aggregate.
	completed, err := timers.Complete(ctx, session.ID, "alice")
	if err != nil {
		t.Fatalf("failed to complete: %v", err)
	}
	if completed.EndedAt == nil {
		t.Error("expected EndedAt to be set")
	}
	waitForEvent(t, sub, domain.EventCompleted)

	daily, err := stats.Daily(ctx, "alice", time.Now())
	if err != nil {
		t.Fatalf("failed to load daily stats: %v", err)
	}
	if daily.SessionsStarted != 1 || daily.SessionsCompleted != 1 {
		t.Errorf("expected 1 started and 1 completed, got %d/%d", daily.SessionsStarted, daily.SessionsCompleted)
	}

	streak, err := stats.Streak(ctx, "alice")
	if err != nil {
		t.Fatalf("failed to load streak: %v", err)
	}
	if streak.CurrentStreak != 1 {
		t.Errorf("expected streak of 1, got %d", streak.CurrentStreak)
	}

	// 6. The slot is free again.
	if _, err := timers.Start(ctx, domain.StartOptions{
		UserID:          "alice",
		Type:            domain.SessionTypeBreak,
		PlannedDuration: 5 * time.Minute,
	}); err != nil {
		t.Errorf("expected start to succeed after completion, got %v", err)
	}
}

func TestHiveBroadcastAcrossUsers(t *testing.T) {
	_, hub, timers, _ := setupStack(t)
	ctx := context.Background()

	hive := "hive-7"
	observer := hub.Subscribe(domain.HiveChannel(hive))
	defer observer.Close()

	session, err := timers.Start(ctx, domain.StartOptions{
		UserID:          "bob",
		HiveID:          &hive,
		Type:            domain.SessionTypeFocus,
		PlannedDuration: 50 * time.Minute,
	})
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	event := waitForEvent(t, observer, domain.EventStarted)
	if event.UserID != "bob" || event.SessionID != session.ID {
		t.Errorf("hive observer got the wrong event: %+v", event)
	}

	// Sessions without a hive never reach hive observers.
	if _, err := timers.Start(ctx, domain.StartOptions{
		UserID:          "carol",
		Type:            domain.SessionTypeWork,
		PlannedDuration: 25 * time.Minute,
	}); err != nil {
		t.Fatalf("failed to start second session: %v", err)
	}
	select {
	case event := <-observer.C:
		t.Errorf("unexpected hive event for hiveless session: %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCancelledSessionLeavesNoStats(t *testing.T) {
	_, _, timers, stats := setupStack(t)
	ctx := context.Background()

	session, err := timers.Start(ctx, domain.StartOptions{
		UserID:          "dave",
		Type:            domain.SessionTypeWork,
		PlannedDuration: 25 * time.Minute,
	})
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	if _, err := timers.Cancel(ctx, session.ID, "dave"); err != nil {
		t.Fatalf("failed to cancel: %v", err)
	}

	daily, err := stats.Daily(ctx, "dave", time.Now())
	if err != nil {
		t.Fatalf("failed to load daily stats: %v", err)
	}
	if daily.SessionsCompleted != 0 {
		t.Errorf("cancelled session must not count as completed, got %d", daily.SessionsCompleted)
	}
	if daily.SessionsStarted != 1 {
		t.Errorf("expected the start to be recorded, got %d", daily.SessionsStarted)
	}

	streak, err := stats.Streak(ctx, "dave")
	if err != nil {
		t.Fatalf("failed to load streak: %v", err)
	}
	if streak.CurrentStreak != 0 {
		t.Errorf("cancelled sessions must not feed the streak, got %d", streak.CurrentStreak)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	store, err := storage.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	hub := broadcast.NewHub(logger)
	stats := services.NewStatsService(store, logger)
	timers := services.NewTimerService(store, hub, stats, logger)

	session, err := timers.Start(ctx, domain.StartOptions{
		UserID:          "erin",
		Type:            domain.SessionTypeStudy,
		PlannedDuration: 45 * time.Minute,
		Title:           "reading",
	})
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	timers.Close()
	hub.Close()
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close storage: %v", err)
	}

	// Reopen the same database: the active session survives.
	store2, err := storage.New(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen storage: %v", err)
	}
	defer store2.Close()

	hub2 := broadcast.NewHub(logger)
	defer hub2.Close()
	timers2 := services.NewTimerService(store2, hub2, services.NewStatsService(store2, logger), logger)
	defer timers2.Close()

	current, err := timers2.Current(ctx, "erin")
	if err != nil {
		t.Fatalf("failed to load current session: %v", err)
	}
	if current == nil || current.ID != session.ID {
		t.Fatalf("expected session %s to survive reopen, got %+v", session.ID, current)
	}
	if current.Title != "reading" {
		t.Errorf("expected title to survive reopen, got %q", current.Title)
	}
}
