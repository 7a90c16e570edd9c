package storage

import (
	"context"
	"testing"
	"time"

	"github.com/focushive/hivetimer/internal/domain"
)

func mustStartSession(t *testing.T, userID string, at time.Time) *domain.FocusSession {
	t.Helper()
	session, err := domain.NewFocusSession(domain.StartOptions{
		UserID:          userID,
		Type:            domain.SessionTypeWork,
		PlannedDuration: 25 * time.Minute,
	}, at)
	if err != nil {
		t.Fatalf("NewFocusSession() error = %v", err)
	}
	return session
}

func TestNewMemory(t *testing.T) {
	storage, err := NewMemory()
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}
	defer func() { _ = storage.Close() }()

	if storage == nil {
		t.Error("NewMemory() returned nil storage")
	}
}

func TestSessionRepository_SaveAndFind(t *testing.T) {
	storage, _ := NewMemory()
	defer func() { _ = storage.Close() }()

	ctx := context.Background()
	repo := storage.Sessions()

	t.Run("save and find by id", func(t *testing.T) {
		session := mustStartSession(t, "alice", time.Now())
		session.Title = "write report"
		if err := repo.Save(ctx, session); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		found, err := repo.FindByID(ctx, session.ID)
		if err != nil {
			t.Errorf("FindByID() error = %v", err)
		}
		if found == nil {
			t.Fatal("FindByID() returned nil")
		}
		if found.Title != "write report" {
			t.Errorf("Found title = %v, want 'write report'", found.Title)
		}
		if found.PlannedDuration != 25*time.Minute {
			t.Errorf("PlannedDuration = %v, want 25m", found.PlannedDuration)
		}
	})

	t.Run("find non-existent returns nil", func(t *testing.T) {
		found, err := repo.FindByID(ctx, "non-existent-id")
		if err != nil {
			t.Errorf("FindByID() error = %v", err)
		}
		if found != nil {
			t.Error("FindByID() should return nil for missing session")
		}
	})

	t.Run("hive id round-trips", func(t *testing.T) {
		hive := "hive-42"
		session := mustStartSession(t, "bob", time.Now())
		session.HiveID = &hive
		if err := repo.Save(ctx, session); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		found, _ := repo.FindByID(ctx, session.ID)
		if found.HiveID == nil || *found.HiveID != hive {
			t.Errorf("HiveID = %v, want %v", found.HiveID, hive)
		}
	})
}

func TestSessionRepository_SingleActiveConstraint(t *testing.T) {
	storage, _ := NewMemory()
	defer func() { _ = storage.Close() }()

	ctx := context.Background()
	repo := storage.Sessions()

	first := mustStartSession(t, "alice", time.Now())
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	t.Run("second active insert conflicts", func(t *testing.T) {
		second := mustStartSession(t, "alice", time.Now())
		err := repo.Save(ctx, second)
		if err != domain.ErrSessionConflict {
			t.Errorf("Save() error = %v, want ErrSessionConflict", err)
		}
	})

	t.Run("paused session still blocks new inserts", func(t *testing.T) {
		if err := first.Pause(time.Now()); err != nil {
			t.Fatalf("Pause() error = %v", err)
		}
		if err := repo.Update(ctx, first); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		second := mustStartSession(t, "alice", time.Now())
		if err := repo.Save(ctx, second); err != domain.ErrSessionConflict {
			t.Errorf("Save() error = %v, want ErrSessionConflict", err)
		}
	})

	t.Run("completed session frees the slot", func(t *testing.T) {
		if err := first.Complete(time.Now()); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if err := repo.Update(ctx, first); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		next := mustStartSession(t, "alice", time.Now())
		if err := repo.Save(ctx, next); err != nil {
			t.Errorf("Save() error = %v, want nil after completion", err)
		}
	})

	t.Run("other users unaffected", func(t *testing.T) {
		session := mustStartSession(t, "bob", time.Now())
		if err := repo.Save(ctx, session); err != nil {
			t.Errorf("Save() error = %v", err)
		}
	})
}

func TestSessionRepository_FindActiveByUser(t *testing.T) {
	storage, _ := NewMemory()
	defer func() { _ = storage.Close() }()

	ctx := context.Background()
	repo := storage.Sessions()

	t.Run("no active session returns nil", func(t *testing.T) {
		active, err := repo.FindActiveByUser(ctx, "alice")
		if err != nil {
			t.Errorf("FindActiveByUser() error = %v", err)
		}
		if active != nil {
			t.Error("FindActiveByUser() should return nil with no sessions")
		}
	})

	t.Run("finds active session", func(t *testing.T) {
		session := mustStartSession(t, "alice", time.Now())
		if err := repo.Save(ctx, session); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		active, err := repo.FindActiveByUser(ctx, "alice")
		if err != nil {
			t.Errorf("FindActiveByUser() error = %v", err)
		}
		if active == nil {
			t.Fatal("FindActiveByUser() returned nil")
		}
		if active.ID != session.ID {
			t.Error("FindActiveByUser() returned wrong session")
		}
	})

	t.Run("finds paused session", func(t *testing.T) {
		active, _ := repo.FindActiveByUser(ctx, "alice")
		if err := active.Pause(time.Now()); err != nil {
			t.Fatalf("Pause() error = %v", err)
		}
		if err := repo.Update(ctx, active); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		found, err := repo.FindActiveByUser(ctx, "alice")
		if err != nil {
			t.Errorf("FindActiveByUser() error = %v", err)
		}
		if found == nil {
			t.Fatal("FindActiveByUser() returned nil for paused session")
		}
		if found.Status != domain.SessionStatusPaused {
			t.Errorf("Status = %v, want PAUSED", found.Status)
		}
	})
}

func TestSessionRepository_Update(t *testing.T) {
	storage, _ := NewMemory()
	defer func() { _ = storage.Close() }()

	ctx := context.Background()
	repo := storage.Sessions()

	start := time.Now().Add(-30 * time.Minute)
	session := mustStartSession(t, "alice", start)
	if err := repo.Save(ctx, session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := session.Pause(start.Add(10 * time.Minute)); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	if err := session.Resume(start.Add(12 * time.Minute)); err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if err := session.Complete(start.Add(30 * time.Minute)); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if err := repo.Update(ctx, session); err != nil {
		t.Errorf("Update() error = %v", err)
	}

	found, _ := repo.FindByID(ctx, session.ID)
	if found.Status != domain.SessionStatusCompleted {
		t.Errorf("Status = %v, want COMPLETED", found.Status)
	}
	if found.EndedAt == nil {
		t.Error("EndedAt should not be nil")
	}
	if found.TotalPaused != 2*time.Minute {
		t.Errorf("TotalPaused = %v, want 2m", found.TotalPaused)
	}
	if found.ActualDuration != 28*time.Minute {
		t.Errorf("ActualDuration = %v, want 28m", found.ActualDuration)
	}
	if found.Interruptions != 1 {
		t.Errorf("Interruptions = %d, want 1", found.Interruptions)
	}
	if found.ProductivityScore == nil {
		t.Error("ProductivityScore should be set after completion")
	}
}

func TestSessionRepository_FindHistoryByUser(t *testing.T) {
	storage, _ := NewMemory()
	defer func() { _ = storage.Close() }()

	ctx := context.Background()
	repo := storage.Sessions()

	base := time.Now().Add(-5 * time.Hour)
	for i := 0; i < 5; i++ {
		session := mustStartSession(t, "alice", base.Add(time.Duration(i)*time.Hour))
		if err := session.Complete(base.Add(time.Duration(i)*time.Hour + 25*time.Minute)); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if err := repo.Save(ctx, session); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	t.Run("first page newest first", func(t *testing.T) {
		sessions, err := repo.FindHistoryByUser(ctx, "alice", 0, 2)
		if err != nil {
			t.Fatalf("FindHistoryByUser() error = %v", err)
		}
		if len(sessions) != 2 {
			t.Fatalf("len(sessions) = %d, want 2", len(sessions))
		}
		if !sessions[0].StartedAt.After(sessions[1].StartedAt) {
			t.Error("sessions should be ordered newest first")
		}
	})

	t.Run("last page is partial", func(t *testing.T) {
		sessions, err := repo.FindHistoryByUser(ctx, "alice", 2, 2)
		if err != nil {
			t.Fatalf("FindHistoryByUser() error = %v", err)
		}
		if len(sessions) != 1 {
			t.Errorf("len(sessions) = %d, want 1", len(sessions))
		}
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		sessions, err := repo.FindHistoryByUser(ctx, "alice", 10, 2)
		if err != nil {
			t.Fatalf("FindHistoryByUser() error = %v", err)
		}
		if len(sessions) != 0 {
			t.Errorf("len(sessions) = %d, want 0", len(sessions))
		}
	})
}

func TestSessionRepository_FindActiveByHive(t *testing.T) {
	storage, _ := NewMemory()
	defer func() { _ = storage.Close() }()

	ctx := context.Background()
	repo := storage.Sessions()
	hive := "study-hall"

	users := []string{"alice", "bob", "carol"}
	for _, user := range users {
		session := mustStartSession(t, user, time.Now())
		session.HiveID = &hive
		if err := repo.Save(ctx, session); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	// One member finishes; they drop off the active list.
	active, _ := repo.FindActiveByUser(ctx, "carol")
	if err := active.Complete(time.Now()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if err := repo.Update(ctx, active); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	sessions, err := repo.FindActiveByHive(ctx, hive)
	if err != nil {
		t.Fatalf("FindActiveByHive() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("len(sessions) = %d, want 2", len(sessions))
	}
}

func TestSessionRepository_FindCompletedDays(t *testing.T) {
	storage, _ := NewMemory()
	defer func() { _ = storage.Close() }()

	ctx := context.Background()
	repo := storage.Sessions()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	starts := []time.Time{
		base,
		base.Add(3 * time.Hour), // same day, deduplicated
		base.AddDate(0, 0, 1),
		base.AddDate(0, 0, 2),
	}
	for _, at := range starts {
		session := mustStartSession(t, "alice", at)
		if err := session.Complete(at.Add(25 * time.Minute)); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if err := repo.Save(ctx, session); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	// A cancelled session never counts toward streaks.
	cancelled := mustStartSession(t, "alice", base.AddDate(0, 0, 3))
	if err := cancelled.Cancel(base.AddDate(0, 0, 3).Add(time.Minute)); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if err := repo.Save(ctx, cancelled); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	days, err := repo.FindCompletedDays(ctx, "alice")
	if err != nil {
		t.Fatalf("FindCompletedDays() error = %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("len(days) = %d, want 3", len(days))
	}
	if !days[0].Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first day = %v, want 2026-03-10", days[0])
	}
}

func TestSessionRepository_FindRecentScores(t *testing.T) {
	storage, _ := NewMemory()
	defer func() { _ = storage.Close() }()

	ctx := context.Background()
	repo := storage.Sessions()

	base := time.Now().Add(-10 * time.Hour)
	distractions := []int{10, 8, 6, 4, 0} // scores 80, 84, 88, 92, 100
	for i, d := range distractions {
		at := base.Add(time.Duration(i) * time.Hour)
		session := mustStartSession(t, "alice", at)
		if err := session.ApplyMetrics(domain.MetricsUpdate{DistractionMinutes: d}); err != nil {
			t.Fatalf("ApplyMetrics() error = %v", err)
		}
		if err := session.Complete(at.Add(25 * time.Minute)); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if err := repo.Save(ctx, session); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	scores, err := repo.FindRecentScores(ctx, "alice", 3)
	if err != nil {
		t.Fatalf("FindRecentScores() error = %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("len(scores) = %d, want 3", len(scores))
	}
	// Newest three, returned oldest first.
	want := []int{88, 92, 100}
	for i, score := range scores {
		if score != want[i] {
			t.Errorf("scores[%d] = %d, want %d", i, score, want[i])
		}
	}
}

func TestSessionRepository_FindStaleActive(t *testing.T) {
	storage, _ := NewMemory()
	defer func() { _ = storage.Close() }()

	ctx := context.Background()
	repo := storage.Sessions()

	old := mustStartSession(t, "alice", time.Now().Add(-5*time.Hour))
	fresh := mustStartSession(t, "bob", time.Now().Add(-10*time.Minute))
	if err := repo.Save(ctx, old); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := repo.Save(ctx, fresh); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	stale, err := repo.FindStaleActive(ctx, time.Now().Add(-4*time.Hour))
	if err != nil {
		t.Fatalf("FindStaleActive() error = %v", err)
	}
	if len(stale) != 1 {
		t.Fatalf("len(stale) = %d, want 1", len(stale))
	}
	if stale[0].ID != old.ID {
		t.Error("FindStaleActive() returned wrong session")
	}
}

func TestStatsRepository_UpsertAndFind(t *testing.T) {
	storage, _ := NewMemory()
	defer func() { _ = storage.Close() }()

	ctx := context.Background()
	repo := storage.Stats()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("missing day returns nil", func(t *testing.T) {
		stats, err := repo.FindByUserAndDate(ctx, "alice", day)
		if err != nil {
			t.Errorf("FindByUserAndDate() error = %v", err)
		}
		if stats != nil {
			t.Error("FindByUserAndDate() should return nil with no data")
		}
	})

	t.Run("upsert creates then accumulates", func(t *testing.T) {
		if err := repo.Upsert(ctx, "alice", day, domain.StatsDelta{SessionsStarted: 1}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
		delta := domain.StatsDelta{SessionsCompleted: 1, FocusMinutes: 25}
		if err := repo.Upsert(ctx, "alice", day, delta); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}

		stats, err := repo.FindByUserAndDate(ctx, "alice", day)
		if err != nil {
			t.Fatalf("FindByUserAndDate() error = %v", err)
		}
		if stats == nil {
			t.Fatal("FindByUserAndDate() returned nil")
		}
		if stats.SessionsStarted != 1 {
			t.Errorf("SessionsStarted = %d, want 1", stats.SessionsStarted)
		}
		if stats.SessionsCompleted != 1 {
			t.Errorf("SessionsCompleted = %d, want 1", stats.SessionsCompleted)
		}
		if stats.TotalFocusMinutes != 25 {
			t.Errorf("TotalFocusMinutes = %d, want 25", stats.TotalFocusMinutes)
		}
		if stats.FocusRatio != 1.0 {
			t.Errorf("FocusRatio = %v, want 1.0", stats.FocusRatio)
		}
	})
}

func TestStatsRepository_FindRange(t *testing.T) {
	storage, _ := NewMemory()
	defer func() { _ = storage.Close() }()

	ctx := context.Background()
	repo := storage.Stats()
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		day := monday.AddDate(0, 0, i*2) // mon, wed, fri
		if err := repo.Upsert(ctx, "alice", day, domain.StatsDelta{FocusMinutes: 25}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}
	// Another user's rows stay invisible.
	if err := repo.Upsert(ctx, "bob", monday, domain.StatsDelta{FocusMinutes: 50}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	stats, err := repo.FindByUserAndDateRange(ctx, "alice", monday, monday.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("FindByUserAndDateRange() error = %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("len(stats) = %d, want 3", len(stats))
	}
	if !stats[0].Date.Before(stats[1].Date) {
		t.Error("stats should be ordered by date ascending")
	}
}

func TestSettingsRepository_SaveAndFind(t *testing.T) {
	storage, _ := NewMemory()
	defer func() { _ = storage.Close() }()

	ctx := context.Background()
	repo := storage.Settings()

	t.Run("missing settings return nil", func(t *testing.T) {
		settings, err := repo.Find(ctx, "alice")
		if err != nil {
			t.Errorf("Find() error = %v", err)
		}
		if settings != nil {
			t.Error("Find() should return nil when no settings exist")
		}
	})

	t.Run("save and reload", func(t *testing.T) {
		settings := domain.DefaultPomodoroSettings("alice")
		if err := repo.Save(ctx, settings); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		found, err := repo.Find(ctx, "alice")
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if found == nil {
			t.Fatal("Find() returned nil")
		}
		if found.WorkDurationMinutes != 25 {
			t.Errorf("WorkDurationMinutes = %d, want 25", found.WorkDurationMinutes)
		}
	})

	t.Run("save replaces wholesale", func(t *testing.T) {
		settings := domain.DefaultPomodoroSettings("alice")
		settings.WorkDurationMinutes = 50
		settings.SoundEnabled = false
		if err := repo.Save(ctx, settings); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		found, _ := repo.Find(ctx, "alice")
		if found.WorkDurationMinutes != 50 {
			t.Errorf("WorkDurationMinutes = %d, want 50", found.WorkDurationMinutes)
		}
		if found.SoundEnabled {
			t.Error("SoundEnabled should be false after replace")
		}
	})
}
