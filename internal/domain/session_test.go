package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func mustNewSession(t *testing.T, opts StartOptions, now time.Time) *FocusSession {
	t.Helper()
	session, err := NewFocusSession(opts, now)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return session
}

func TestNewFocusSession(t *testing.T) {
	now := time.Now()
	session := mustNewSession(t, StartOptions{
		UserID:          "alice",
		Type:            SessionTypeWork,
		PlannedDuration: 25 * time.Minute,
		Title:           "write report",
	}, now)

	if session.ID == "" {
		t.Error("expected an ID to be generated")
	}
	if session.Status != SessionStatusActive {
		t.Errorf("expected ACTIVE, got %v", session.Status)
	}
	if !session.StartedAt.Equal(now) {
		t.Errorf("expected StartedAt %v, got %v", now, session.StartedAt)
	}
	if session.Version != 0 {
		t.Errorf("expected version 0, got %d", session.Version)
	}
}

func TestNewFocusSession_Validation(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		opts StartOptions
	}{
		{"missing user", StartOptions{Type: SessionTypeWork, PlannedDuration: 25 * time.Minute}},
		{"zero duration", StartOptions{UserID: "alice", Type: SessionTypeWork}},
		{"negative duration", StartOptions{UserID: "alice", Type: SessionTypeWork, PlannedDuration: -time.Minute}},
		{"unknown type", StartOptions{UserID: "alice", Type: "NAP", PlannedDuration: 25 * time.Minute}},
		{"notes too long", StartOptions{UserID: "alice", Type: SessionTypeWork, PlannedDuration: 25 * time.Minute, Notes: strings.Repeat("x", MaxNotesLength+1)}},
		{"reminder without lead", StartOptions{UserID: "alice", Type: SessionTypeWork, PlannedDuration: 25 * time.Minute, ReminderEnabled: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewFocusSession(tc.opts, now); !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestParseSessionType_CaseInsensitive(t *testing.T) {
	got, err := ParseSessionType("study")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != SessionTypeStudy {
		t.Errorf("expected STUDY, got %v", got)
	}
}

func TestSessionLifecycle_PauseResumeComplete(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	session := mustNewSession(t, StartOptions{
		UserID:          "alice",
		Type:            SessionTypeWork,
		PlannedDuration: 25 * time.Minute,
	}, start)

	// Pause at T+10, resume at T+12, complete at T+30.
	if err := session.Pause(start.Add(10 * time.Minute)); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if err := session.Resume(start.Add(12 * time.Minute)); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if err := session.Complete(start.Add(30 * time.Minute)); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	if session.TotalPaused != 2*time.Minute {
		t.Errorf("expected 2m paused, got %v", session.TotalPaused)
	}
	if session.ActualDuration != 28*time.Minute {
		t.Errorf("expected 28m actual, got %v", session.ActualDuration)
	}
	if session.Interruptions != 1 {
		t.Errorf("expected 1 interruption, got %d", session.Interruptions)
	}
	if session.Version != 3 {
		t.Errorf("expected version 3 after three transitions, got %d", session.Version)
	}
	if session.ProductivityScore == nil || *session.ProductivityScore != 100 {
		t.Errorf("expected default score 100, got %v", session.ProductivityScore)
	}
}

func TestSessionRemaining_FrozenWhilePaused(t *testing.T) {
	start := time.Now()
	session := mustNewSession(t, StartOptions{
		UserID:          "alice",
		Type:            SessionTypeWork,
		PlannedDuration: 25 * time.Minute,
	}, start)

	if err := session.Pause(start.Add(10 * time.Minute)); err != nil {
		t.Fatalf("pause failed: %v", err)
	}

	// Remaining must not shrink while paused, however late we look.
	for _, at := range []time.Duration{11 * time.Minute, 1 * time.Hour, 24 * time.Hour} {
		if got := session.Remaining(start.Add(at)); got != 15*time.Minute {
			t.Errorf("at T+%v: expected 15m remaining, got %v", at, got)
		}
	}
}

func TestSessionRemaining_ClampsAtZero(t *testing.T) {
	start := time.Now()
	session := mustNewSession(t, StartOptions{
		UserID:          "alice",
		Type:            SessionTypeWork,
		PlannedDuration: 25 * time.Minute,
	}, start)

	if got := session.Remaining(start.Add(40 * time.Minute)); got != 0 {
		t.Errorf("expected 0 remaining past the planned end, got %v", got)
	}
	// Overrun does not end the session; the user decides when it ends.
	if session.Status != SessionStatusActive {
		t.Errorf("expected session to stay ACTIVE, got %v", session.Status)
	}
}

func TestSessionCompleteWhilePaused_ExcludesOpenPause(t *testing.T) {
	start := time.Now()
	session := mustNewSession(t, StartOptions{
		UserID:          "alice",
		Type:            SessionTypeWork,
		PlannedDuration: 25 * time.Minute,
	}, start)

	if err := session.Pause(start.Add(20 * time.Minute)); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if err := session.Complete(start.Add(50 * time.Minute)); err != nil {
		t.Fatalf("complete from paused failed: %v", err)
	}

	if session.ActualDuration != 20*time.Minute {
		t.Errorf("expected 20m actual, got %v", session.ActualDuration)
	}
	if session.TotalPaused != 30*time.Minute {
		t.Errorf("expected 30m paused, got %v", session.TotalPaused)
	}
}

func TestSessionInvalidTransitions(t *testing.T) {
	start := time.Now()
	now := start.Add(time.Minute)

	t.Run("pause while paused", func(t *testing.T) {
		session := mustNewSession(t, StartOptions{UserID: "a", Type: SessionTypeWork, PlannedDuration: time.Hour}, start)
		_ = session.Pause(now)
		if err := session.Pause(now); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("resume while active", func(t *testing.T) {
		session := mustNewSession(t, StartOptions{UserID: "a", Type: SessionTypeWork, PlannedDuration: time.Hour}, start)
		if err := session.Resume(now); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("complete after cancel", func(t *testing.T) {
		session := mustNewSession(t, StartOptions{UserID: "a", Type: SessionTypeWork, PlannedDuration: time.Hour}, start)
		_ = session.Cancel(now)
		if err := session.Complete(now); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("cancel after complete", func(t *testing.T) {
		session := mustNewSession(t, StartOptions{UserID: "a", Type: SessionTypeWork, PlannedDuration: time.Hour}, start)
		_ = session.Complete(now)
		if err := session.Cancel(now); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestApplyMetrics(t *testing.T) {
	start := time.Now()
	session := mustNewSession(t, StartOptions{UserID: "a", Type: SessionTypeWork, PlannedDuration: time.Hour}, start)

	if err := session.ApplyMetrics(MetricsUpdate{TabSwitches: 4, DistractionMinutes: 3}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if *session.ProductivityScore != 90 {
		t.Errorf("expected score 90, got %d", *session.ProductivityScore)
	}

	// Counters accumulate across reports; NotesCount is absolute.
	if err := session.ApplyMetrics(MetricsUpdate{TabSwitches: 2, NotesCount: 5}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if session.TabSwitches != 6 {
		t.Errorf("expected 6 tab switches, got %d", session.TabSwitches)
	}
	if session.NotesCount != 5 {
		t.Errorf("expected notes count 5, got %d", session.NotesCount)
	}
	if *session.ProductivityScore != 88 {
		t.Errorf("expected score 88, got %d", *session.ProductivityScore)
	}
}

func TestApplyMetrics_Validation(t *testing.T) {
	start := time.Now()
	session := mustNewSession(t, StartOptions{UserID: "a", Type: SessionTypeWork, PlannedDuration: time.Hour}, start)

	if err := session.ApplyMetrics(MetricsUpdate{TabSwitches: -1}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for negative delta, got %v", err)
	}

	_ = session.Complete(start.Add(time.Minute))
	if err := session.ApplyMetrics(MetricsUpdate{TabSwitches: 1}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition on a completed session, got %v", err)
	}
}

func TestDeriveScore_ClampsAtZero(t *testing.T) {
	start := time.Now()
	session := mustNewSession(t, StartOptions{UserID: "a", Type: SessionTypeWork, PlannedDuration: time.Hour}, start)

	if err := session.ApplyMetrics(MetricsUpdate{DistractionMinutes: 40, FocusBreaks: 10}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if *session.ProductivityScore != 0 {
		t.Errorf("expected score clamped to 0, got %d", *session.ProductivityScore)
	}
}

func TestSnapshot_CompletedCarriesActualMinutes(t *testing.T) {
	start := time.Now()
	session := mustNewSession(t, StartOptions{UserID: "a", Type: SessionTypeWork, PlannedDuration: 25 * time.Minute}, start)
	_ = session.Complete(start.Add(25 * time.Minute))

	snap := session.Snapshot(start.Add(26 * time.Minute))
	if snap.ActualMinutes == nil || *snap.ActualMinutes != 25 {
		t.Errorf("expected actual 25m in snapshot, got %v", snap.ActualMinutes)
	}
	if snap.RemainingMinutes != 0 {
		t.Errorf("expected 0 remaining on a terminal snapshot, got %d", snap.RemainingMinutes)
	}
}

func TestEventDestinations(t *testing.T) {
	start := time.Now()
	hive := "hive-1"

	solo := mustNewSession(t, StartOptions{UserID: "a", Type: SessionTypeWork, PlannedDuration: time.Hour}, start)
	event := NewTimerEvent(EventStarted, solo, start)
	if got := event.Destinations(); len(got) != 1 || got[0] != "user/a" {
		t.Errorf("expected only the user channel, got %v", got)
	}

	hived := mustNewSession(t, StartOptions{UserID: "a", HiveID: &hive, Type: SessionTypeWork, PlannedDuration: time.Hour}, start)
	event = NewTimerEvent(EventStarted, hived, start)
	got := event.Destinations()
	if len(got) != 2 || got[0] != "user/a" || got[1] != "hive/hive-1" {
		t.Errorf("expected user and hive channels, got %v", got)
	}
}
