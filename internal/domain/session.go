package domain

import (
	"fmt"
	"strings"
	"time"
)

// SessionType represents the kind of timed interval.
type SessionType string

const (
	SessionTypeWork  SessionType = "WORK"
	SessionTypeBreak SessionType = "BREAK"
	SessionTypeStudy SessionType = "STUDY"
	SessionTypeFocus SessionType = "FOCUS"
)

// SessionStatus represents the current state of a session.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "ACTIVE"
	SessionStatusPaused    SessionStatus = "PAUSED"
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusCancelled SessionStatus = "CANCELLED"
)

// MaxNotesLength bounds the free-text notes field.
const MaxNotesLength = 1000

// ParseSessionType validates a session type string.
func ParseSessionType(s string) (SessionType, error) {
	switch t := SessionType(strings.ToUpper(s)); t {
	case SessionTypeWork, SessionTypeBreak, SessionTypeStudy, SessionTypeFocus:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown session type %q", ErrValidation, s)
	}
}

// IsTerminal reports whether the status admits no further transitions.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusCancelled
}

// IsFocus reports whether the type counts toward focus minutes.
// Breaks are the only type that counts as rest.
func (t SessionType) IsFocus() bool {
	return t != SessionTypeBreak
}

// FocusSession is one user's timed work, break or study interval.
type FocusSession struct {
	ID     string
	UserID string
	HiveID *string

	Type   SessionType
	Status SessionStatus

	Title string
	Notes string

	PlannedDuration time.Duration
	StartedAt       time.Time
	PausedAt        *time.Time
	ResumedAt       *time.Time
	EndedAt         *time.Time
	TotalPaused     time.Duration
	ActualDuration  time.Duration

	Interruptions int

	// Productivity signals reported while the session runs.
	TabSwitches        int
	DistractionMinutes int
	FocusBreaks        int
	NotesCount         int
	ProductivityScore  *int

	ReminderEnabled bool
	ReminderLead    time.Duration

	// Version increments on every lifecycle transition. Deferred work
	// (reminders) captures the version it was scheduled against and is
	// discarded if the session has moved on since.
	Version int
}

// StartOptions carries the caller-supplied parameters for a new session.
type StartOptions struct {
	UserID          string
	HiveID          *string
	Type            SessionType
	PlannedDuration time.Duration
	Title           string
	Notes           string
	ReminderEnabled bool
	ReminderLead    time.Duration
}

// NewFocusSession constructs a session in the ACTIVE state.
func NewFocusSession(opts StartOptions, now time.Time) (*FocusSession, error) {
	if opts.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if opts.PlannedDuration <= 0 {
		return nil, fmt.Errorf("%w: planned duration must be positive", ErrValidation)
	}
	if _, err := ParseSessionType(string(opts.Type)); err != nil {
		return nil, err
	}
	if len(opts.Notes) > MaxNotesLength {
		return nil, fmt.Errorf("%w: notes exceed %d characters", ErrValidation, MaxNotesLength)
	}
	if opts.ReminderEnabled && opts.ReminderLead <= 0 {
		return nil, fmt.Errorf("%w: reminder lead time must be positive", ErrValidation)
	}

	return &FocusSession{
		ID:              generateID(),
		UserID:          opts.UserID,
		HiveID:          opts.HiveID,
		Type:            opts.Type,
		Status:          SessionStatusActive,
		Title:           opts.Title,
		Notes:           opts.Notes,
		PlannedDuration: opts.PlannedDuration,
		StartedAt:       now,
		ReminderEnabled: opts.ReminderEnabled,
		ReminderLead:    opts.ReminderLead,
	}, nil
}

// Pause transitions ACTIVE → PAUSED and counts the interruption.
func (s *FocusSession) Pause(now time.Time) error {
	if s.Status != SessionStatusActive {
		return fmt.Errorf("%w: cannot pause a %s session", ErrInvalidTransition, s.Status)
	}
	s.PausedAt = &now
	s.Interruptions++
	s.Status = SessionStatusPaused
	s.Version++
	return nil
}

// Resume transitions PAUSED → ACTIVE, folding the open pause interval
// into TotalPaused.
func (s *FocusSession) Resume(now time.Time) error {
	if s.Status != SessionStatusPaused {
		return fmt.Errorf("%w: cannot resume a %s session", ErrInvalidTransition, s.Status)
	}
	s.foldOpenPause(now)
	s.ResumedAt = &now
	s.Status = SessionStatusActive
	s.Version++
	return nil
}

// Complete finishes the session from ACTIVE or PAUSED. Completing while
// paused folds the open pause interval first, so paused time never counts
// toward the actual duration.
func (s *FocusSession) Complete(now time.Time) error {
	if s.Status.IsTerminal() {
		return fmt.Errorf("%w: session is already %s", ErrInvalidTransition, s.Status)
	}
	s.foldOpenPause(now)
	s.EndedAt = &now
	s.ActualDuration = s.activeDuration(now)
	s.Status = SessionStatusCompleted
	s.FinalizeScore()
	s.Version++
	return nil
}

// Cancel aborts the session from ACTIVE or PAUSED. Cancelled sessions are
// excluded from productivity statistics.
func (s *FocusSession) Cancel(now time.Time) error {
	if s.Status.IsTerminal() {
		return fmt.Errorf("%w: session is already %s", ErrInvalidTransition, s.Status)
	}
	s.foldOpenPause(now)
	s.EndedAt = &now
	s.Status = SessionStatusCancelled
	s.Version++
	return nil
}

func (s *FocusSession) foldOpenPause(now time.Time) {
	if s.PausedAt == nil {
		return
	}
	if d := now.Sub(*s.PausedAt); d > 0 {
		s.TotalPaused += d
	}
	s.PausedAt = nil
}

// activeDuration is wall-clock time since start minus accumulated pauses.
// While PAUSED the open interval is excluded, so the value is frozen at
// what it was when the pause began.
func (s *FocusSession) activeDuration(now time.Time) time.Duration {
	end := now
	if s.EndedAt != nil {
		end = *s.EndedAt
	} else if s.PausedAt != nil {
		end = *s.PausedAt
	}
	d := end.Sub(s.StartedAt) - s.TotalPaused
	if d < 0 {
		return 0
	}
	return d
}

// Remaining returns how much of the planned duration is left. Frozen while
// paused, zero once the planned duration has elapsed or the session ended.
func (s *FocusSession) Remaining(now time.Time) time.Duration {
	if s.Status.IsTerminal() {
		return 0
	}
	r := s.PlannedDuration - s.activeDuration(now)
	if r < 0 {
		return 0
	}
	return r
}

// Elapsed returns active (non-paused) time since the session started.
func (s *FocusSession) Elapsed(now time.Time) time.Duration {
	return s.activeDuration(now)
}

// ActualMinutes is the completed duration in whole minutes.
func (s *FocusSession) ActualMinutes() int {
	return int(s.ActualDuration.Minutes())
}

// ApplyMetrics accumulates reported productivity signals and re-derives the
// score. Counter fields are deltas; NotesCount is absolute.
func (s *FocusSession) ApplyMetrics(m MetricsUpdate) error {
	if s.Status.IsTerminal() {
		return fmt.Errorf("%w: cannot update metrics on a %s session", ErrInvalidTransition, s.Status)
	}
	if m.TabSwitches < 0 || m.DistractionMinutes < 0 || m.FocusBreaks < 0 || m.NotesCount < 0 {
		return fmt.Errorf("%w: metrics must be non-negative", ErrValidation)
	}
	s.TabSwitches += m.TabSwitches
	s.DistractionMinutes += m.DistractionMinutes
	s.FocusBreaks += m.FocusBreaks
	if m.NotesCount > 0 {
		s.NotesCount = m.NotesCount
	}
	score := s.deriveScore()
	s.ProductivityScore = &score
	return nil
}

// FinalizeScore sets the productivity score at completion time if no signal
// updates already derived one.
func (s *FocusSession) FinalizeScore() {
	if s.ProductivityScore == nil {
		score := s.deriveScore()
		s.ProductivityScore = &score
	}
}

// deriveScore rates the session 0..100 from reported distraction signals.
func (s *FocusSession) deriveScore() int {
	score := 100
	score -= 2 * s.DistractionMinutes
	score -= s.TabSwitches
	score -= 5 * s.FocusBreaks
	if score < 0 {
		score = 0
	}
	return score
}

// MetricsUpdate carries reported productivity signals for a running session.
type MetricsUpdate struct {
	TabSwitches        int
	DistractionMinutes int
	FocusBreaks        int
	NotesCount         int
}
