package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/focushive/hivetimer/internal/domain"
	"github.com/focushive/hivetimer/internal/ports"
)

// reminderScheduler arms one-shot timers that emit timer.reminder events
// lead-time before a session's planned completion. Each armed timer
// remembers the lifecycle version it was scheduled against; a fire whose
// version no longer matches the stored session is dropped, so a reminder
// that loses a race with pause or cancel dies harmlessly.
type reminderScheduler struct {
	sessions    ports.SessionRepository
	broadcaster ports.Broadcaster
	logger      *slog.Logger
	now         func() time.Time

	mu     sync.Mutex
	armed  map[string]*armedReminder
	closed bool
}

type armedReminder struct {
	timer   *time.Timer
	version int
}

func newReminderScheduler(sessions ports.SessionRepository, broadcaster ports.Broadcaster, logger *slog.Logger) *reminderScheduler {
	return &reminderScheduler{
		sessions:    sessions,
		broadcaster: broadcaster,
		logger:      logger,
		now:         time.Now,
		armed:       make(map[string]*armedReminder),
	}
}

// Schedule arms (or re-arms) the reminder for an ACTIVE session. Sessions
// without reminders, or whose reminder point has already passed, are left
// alone. Called on start and again on resume, so the firing point shifts
// by however long the session sat paused.
func (r *reminderScheduler) Schedule(session *domain.FocusSession) {
	if !session.ReminderEnabled || session.Status != domain.SessionStatusActive {
		return
	}
	delay := session.Remaining(r.now()) - session.ReminderLead
	if delay <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if prev, ok := r.armed[session.ID]; ok {
		prev.timer.Stop()
	}

	id, version := session.ID, session.Version
	r.armed[id] = &armedReminder{
		version: version,
		timer:   time.AfterFunc(delay, func() { r.fire(id, version) }),
	}
}

// Cancel disarms the session's pending reminder, if any. Called on pause,
// complete and cancel.
func (r *reminderScheduler) Cancel(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if armed, ok := r.armed[sessionID]; ok {
		armed.timer.Stop()
		delete(r.armed, sessionID)
	}
}

// Close disarms everything; used on shutdown.
func (r *reminderScheduler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for id, armed := range r.armed {
		armed.timer.Stop()
		delete(r.armed, id)
	}
}

// fire validates the session is still the one the reminder was armed for
// before emitting. A stop that arrives a hair too late reaches this path;
// the version and status checks make the stale fire a no-op.
func (r *reminderScheduler) fire(sessionID string, version int) {
	r.mu.Lock()
	if armed, ok := r.armed[sessionID]; ok && armed.version == version {
		delete(r.armed, sessionID)
	}
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session, err := r.sessions.FindByID(ctx, sessionID)
	if err != nil {
		r.logger.Warn("reminder lookup failed", "session_id", sessionID, "error", err)
		return
	}
	if session == nil || session.Status != domain.SessionStatusActive || session.Version != version {
		return
	}

	r.broadcaster.Publish(domain.NewTimerEvent(domain.EventReminder, session, r.now()))
	r.logger.Debug("reminder fired", "session_id", sessionID, "user_id", session.UserID)
}
