package domain

import "time"

// EventType names a timer state-change notification.
type EventType string

const (
	EventStarted             EventType = "timer.started"
	EventPaused              EventType = "timer.paused"
	EventResumed             EventType = "timer.resumed"
	EventCompleted           EventType = "timer.completed"
	EventCancelled           EventType = "timer.cancelled"
	EventProductivityUpdated EventType = "timer.productivity.updated"
	EventReminder            EventType = "timer.reminder"
)

// SessionSnapshot is the wire representation of a session at a point in
// time. Durations are reported in whole minutes.
type SessionSnapshot struct {
	ID                 string        `json:"id"`
	UserID             string        `json:"userId"`
	HiveID             *string       `json:"hiveId,omitempty"`
	Type               SessionType   `json:"sessionType"`
	Status             SessionStatus `json:"status"`
	Title              string        `json:"title,omitempty"`
	Notes              string        `json:"notes,omitempty"`
	PlannedMinutes     int           `json:"plannedDurationMinutes"`
	RemainingMinutes   int           `json:"remainingMinutes"`
	ElapsedMinutes     int           `json:"elapsedMinutes"`
	ActualMinutes      *int          `json:"actualDurationMinutes,omitempty"`
	TotalPausedMinutes int           `json:"totalPausedMinutes"`
	Interruptions      int           `json:"interruptions"`
	ProductivityScore  *int          `json:"productivityScore,omitempty"`
	StartedAt          time.Time     `json:"startedAt"`
	PausedAt           *time.Time    `json:"pausedAt,omitempty"`
	ResumedAt          *time.Time    `json:"resumedAt,omitempty"`
	EndedAt            *time.Time    `json:"endedAt,omitempty"`
}

// Snapshot renders the session for broadcast and query responses.
func (s *FocusSession) Snapshot(now time.Time) SessionSnapshot {
	snap := SessionSnapshot{
		ID:                 s.ID,
		UserID:             s.UserID,
		HiveID:             s.HiveID,
		Type:               s.Type,
		Status:             s.Status,
		Title:              s.Title,
		Notes:              s.Notes,
		PlannedMinutes:     int(s.PlannedDuration.Minutes()),
		RemainingMinutes:   int(s.Remaining(now).Minutes()),
		ElapsedMinutes:     int(s.Elapsed(now).Minutes()),
		TotalPausedMinutes: int(s.TotalPaused.Minutes()),
		Interruptions:      s.Interruptions,
		ProductivityScore:  s.ProductivityScore,
		StartedAt:          s.StartedAt,
		PausedAt:           s.PausedAt,
		ResumedAt:          s.ResumedAt,
		EndedAt:            s.EndedAt,
	}
	if s.Status == SessionStatusCompleted {
		m := s.ActualMinutes()
		snap.ActualMinutes = &m
	}
	return snap
}

// TimerEvent is one state-change notification delivered to subscribers.
type TimerEvent struct {
	Type      EventType       `json:"type"`
	SessionID string          `json:"sessionId"`
	UserID    string          `json:"userId"`
	HiveID    *string         `json:"hiveId,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Session   SessionSnapshot `json:"session"`
}

// NewTimerEvent renders an event for the session's current state.
func NewTimerEvent(t EventType, s *FocusSession, now time.Time) TimerEvent {
	return TimerEvent{
		Type:      t,
		SessionID: s.ID,
		UserID:    s.UserID,
		HiveID:    s.HiveID,
		Timestamp: now,
		Session:   s.Snapshot(now),
	}
}

// UserChannel is the subscription key for a user's private event stream.
func UserChannel(userID string) string { return "user/" + userID }

// HiveChannel is the subscription key for a hive's shared event stream.
func HiveChannel(hiveID string) string { return "hive/" + hiveID }

// Destinations lists the channels this event must reach: the owning user's
// devices, plus the hive channel when the session is tagged with one. The
// list is explicit so the delivery contract stays testable independent of
// transport.
func (e TimerEvent) Destinations() []string {
	dests := []string{UserChannel(e.UserID)}
	if e.HiveID != nil && *e.HiveID != "" {
		dests = append(dests, HiveChannel(*e.HiveID))
	}
	return dests
}

// SyncState answers an on-demand synchronization request. Active is false
// when the user has no running or paused session; that is a well-defined
// response, not an error.
type SyncState struct {
	Active           bool          `json:"active"`
	SessionID        string        `json:"sessionId,omitempty"`
	Status           SessionStatus `json:"status,omitempty"`
	RemainingMinutes int           `json:"remainingMinutes"`
	ElapsedMinutes   int           `json:"elapsedMinutes"`
	LastSyncTime     time.Time     `json:"lastSyncTime"`
}
