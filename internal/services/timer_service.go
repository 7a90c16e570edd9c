// Package services implements the timer use cases on top of the domain
// model and the storage/broadcast ports.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/focushive/hivetimer/internal/domain"
	"github.com/focushive/hivetimer/internal/ports"
)

// TimerService is the command façade for the focus session lifecycle. Each
// lifecycle mutation runs inside the owning user's serialization scope;
// events are handed to the broadcaster in commit order before the scope is
// released (the broadcaster enqueues without blocking, so a slow subscriber
// never stalls a command).
type TimerService struct {
	storage     ports.Storage
	broadcaster ports.Broadcaster
	stats       *StatsService
	guard       *userGuard
	reminders   *reminderScheduler
	logger      *slog.Logger
	now         func() time.Time
}

// NewTimerService creates the orchestrator and its reminder scheduler.
func NewTimerService(storage ports.Storage, broadcaster ports.Broadcaster, stats *StatsService, logger *slog.Logger) *TimerService {
	return &TimerService{
		storage:     storage,
		broadcaster: broadcaster,
		stats:       stats,
		guard:       newUserGuard(),
		reminders:   newReminderScheduler(storage.Sessions(), broadcaster, logger),
		logger:      logger,
		now:         time.Now,
	}
}

// Close disarms pending reminders; used on shutdown.
func (s *TimerService) Close() {
	s.reminders.Close()
}

// Start begins a new session for the user. A user with a non-terminal
// session gets domain.ErrSessionConflict; losing one of two concurrent
// starts gets the same error, never a second active session.
func (s *TimerService) Start(ctx context.Context, opts domain.StartOptions) (*domain.FocusSession, error) {
	session, err := domain.NewFocusSession(opts, s.now())
	if err != nil {
		return nil, err
	}

	release := s.guard.acquire(opts.UserID)
	defer release()

	active, err := s.storage.Sessions().FindActiveByUser(ctx, opts.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active sessions: %w", err)
	}
	if active != nil {
		return nil, domain.ErrSessionConflict
	}

	// The insert re-checks the invariant at the store layer, so a second
	// process racing us still cannot create a duplicate.
	if err := s.storage.Sessions().Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	if err := s.stats.RecordStarted(ctx, session); err != nil {
		s.logger.Warn("failed to count session start", "session_id", session.ID, "error", err)
	}

	s.logger.Debug("session started",
		"session_id", session.ID, "user_id", session.UserID, "type", session.Type)
	s.broadcaster.Publish(domain.NewTimerEvent(domain.EventStarted, session, s.now()))
	s.reminders.Schedule(session)

	return session, nil
}

// Pause suspends the user's ACTIVE session and freezes its remaining time.
func (s *TimerService) Pause(ctx context.Context, sessionID, userID string) (*domain.FocusSession, error) {
	release := s.guard.acquire(userID)
	defer release()

	session, err := s.loadOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := session.Pause(s.now()); err != nil {
		return nil, err
	}
	if err := s.storage.Sessions().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	s.reminders.Cancel(session.ID)
	s.logger.Debug("session paused", "session_id", session.ID, "user_id", userID)
	s.broadcaster.Publish(domain.NewTimerEvent(domain.EventPaused, session, s.now()))
	return session, nil
}

// Resume continues a PAUSED session, folding the pause interval into the
// accumulated pause time and re-arming the reminder around it.
func (s *TimerService) Resume(ctx context.Context, sessionID, userID string) (*domain.FocusSession, error) {
	release := s.guard.acquire(userID)
	defer release()

	session, err := s.loadOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := session.Resume(s.now()); err != nil {
		return nil, err
	}
	if err := s.storage.Sessions().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	s.logger.Debug("session resumed", "session_id", session.ID, "user_id", userID)
	s.broadcaster.Publish(domain.NewTimerEvent(domain.EventResumed, session, s.now()))
	s.reminders.Schedule(session)
	return session, nil
}

// Complete finishes a session from ACTIVE or PAUSED and feeds the
// productivity aggregates.
func (s *TimerService) Complete(ctx context.Context, sessionID, userID string) (*domain.FocusSession, error) {
	release := s.guard.acquire(userID)
	defer release()

	session, err := s.loadOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := session.Complete(s.now()); err != nil {
		return nil, err
	}
	if err := s.storage.Sessions().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if err := s.stats.RecordCompleted(ctx, session); err != nil {
		s.logger.Warn("failed to record completion", "session_id", session.ID, "error", err)
	}

	s.reminders.Cancel(session.ID)
	s.logger.Debug("session completed",
		"session_id", session.ID, "user_id", userID, "actual_minutes", session.ActualMinutes())
	s.broadcaster.Publish(domain.NewTimerEvent(domain.EventCompleted, session, s.now()))
	return session, nil
}

// Cancel aborts a session from ACTIVE or PAUSED. Cancelled sessions do not
// touch productivity aggregates or streaks.
func (s *TimerService) Cancel(ctx context.Context, sessionID, userID string) (*domain.FocusSession, error) {
	release := s.guard.acquire(userID)
	defer release()

	session, err := s.loadOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := session.Cancel(s.now()); err != nil {
		return nil, err
	}
	if err := s.storage.Sessions().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	s.reminders.Cancel(session.ID)
	s.logger.Debug("session cancelled", "session_id", session.ID, "user_id", userID)
	s.broadcaster.Publish(domain.NewTimerEvent(domain.EventCancelled, session, s.now()))
	return session, nil
}

// UpdateMetrics folds reported productivity signals into a running session
// and re-derives its score.
func (s *TimerService) UpdateMetrics(ctx context.Context, sessionID, userID string, m domain.MetricsUpdate) (*domain.FocusSession, error) {
	release := s.guard.acquire(userID)
	defer release()

	session, err := s.loadOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := session.ApplyMetrics(m); err != nil {
		return nil, err
	}
	if err := s.storage.Sessions().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	s.broadcaster.Publish(domain.NewTimerEvent(domain.EventProductivityUpdated, session, s.now()))
	return session, nil
}

// Current returns the user's non-terminal session, or nil when there is
// none. Absence is not an error.
func (s *TimerService) Current(ctx context.Context, userID string) (*domain.FocusSession, error) {
	session, err := s.storage.Sessions().FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find active session: %w", err)
	}
	return session, nil
}

// Sync recomputes a fresh timer snapshot for multi-device synchronization.
// Two devices calling concurrently read the same committed state; nothing
// is served from a cache.
func (s *TimerService) Sync(ctx context.Context, userID string) (domain.SyncState, error) {
	now := s.now()
	session, err := s.storage.Sessions().FindActiveByUser(ctx, userID)
	if err != nil {
		return domain.SyncState{}, fmt.Errorf("failed to find active session: %w", err)
	}
	if session == nil {
		return domain.SyncState{LastSyncTime: now}, nil
	}
	return domain.SyncState{
		Active:           true,
		SessionID:        session.ID,
		Status:           session.Status,
		RemainingMinutes: int(session.Remaining(now).Minutes()),
		ElapsedMinutes:   int(session.Elapsed(now).Minutes()),
		LastSyncTime:     now,
	}, nil
}

// History returns the user's sessions newest-first, paginated.
func (s *TimerService) History(ctx context.Context, userID string, page, size int) ([]*domain.FocusSession, error) {
	if page < 0 || size <= 0 {
		return nil, fmt.Errorf("%w: invalid page parameters", domain.ErrValidation)
	}
	sessions, err := s.storage.Sessions().FindHistoryByUser(ctx, userID, page, size)
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}
	return sessions, nil
}

// HiveActive lists the non-terminal sessions in a hive so observers can
// see hivemates' live timer state.
func (s *TimerService) HiveActive(ctx context.Context, hiveID string) ([]*domain.FocusSession, error) {
	if hiveID == "" {
		return nil, fmt.Errorf("%w: hive id is required", domain.ErrValidation)
	}
	sessions, err := s.storage.Sessions().FindActiveByHive(ctx, hiveID)
	if err != nil {
		return nil, fmt.Errorf("failed to load hive sessions: %w", err)
	}
	return sessions, nil
}

// ExpireStale cancels non-terminal sessions older than the horizon. Run
// periodically; returns how many sessions were swept.
func (s *TimerService) ExpireStale(ctx context.Context, horizon time.Duration) (int, error) {
	cutoff := s.now().Add(-horizon)
	stale, err := s.storage.Sessions().FindStaleActive(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to find stale sessions: %w", err)
	}

	swept := 0
	for _, candidate := range stale {
		if err := s.expireOne(ctx, candidate.ID, candidate.UserID); err != nil {
			s.logger.Warn("failed to expire session", "session_id", candidate.ID, "error", err)
			continue
		}
		swept++
	}
	if swept > 0 {
		s.logger.Info("expired stale sessions", "count", swept)
	}
	return swept, nil
}

func (s *TimerService) expireOne(ctx context.Context, sessionID, userID string) error {
	release := s.guard.acquire(userID)
	defer release()

	// Re-fetch under the lock; the owner may have completed it meanwhile.
	session, err := s.storage.Sessions().FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil || session.Status.IsTerminal() {
		return nil
	}
	if err := session.Cancel(s.now()); err != nil {
		return err
	}
	if err := s.storage.Sessions().Update(ctx, session); err != nil {
		return err
	}

	s.reminders.Cancel(session.ID)
	s.broadcaster.Publish(domain.NewTimerEvent(domain.EventCancelled, session, s.now()))
	return nil
}

// loadOwned fetches a session and checks ownership. Callers hold the
// user's lock.
func (s *TimerService) loadOwned(ctx context.Context, sessionID, userID string) (*domain.FocusSession, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", domain.ErrValidation)
	}
	session, err := s.storage.Sessions().FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return session, nil
}
