package httpapi

import (
	"net/http"
	"time"

	"github.com/focushive/hivetimer/internal/domain"
)

type startRequest struct {
	Type            string  `json:"sessionType"`
	DurationMinutes int     `json:"durationMinutes"`
	HiveID          *string `json:"hiveId,omitempty"`
	Title           string  `json:"title,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	ReminderEnabled bool    `json:"reminderEnabled,omitempty"`
	ReminderMinutes int     `json:"reminderMinutesBefore,omitempty"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var body startRequest
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sessionType, err := domain.ParseSessionType(body.Type)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	session, err := s.timers.Start(r.Context(), domain.StartOptions{
		UserID:          userID(r),
		HiveID:          body.HiveID,
		Type:            sessionType,
		PlannedDuration: time.Duration(body.DurationMinutes) * time.Minute,
		Title:           body.Title,
		Notes:           body.Notes,
		ReminderEnabled: body.ReminderEnabled,
		ReminderLead:    time.Duration(body.ReminderMinutes) * time.Minute,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session.Snapshot(time.Now()))
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	session, err := s.timers.Pause(r.Context(), r.PathValue("id"), userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot(time.Now()))
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	session, err := s.timers.Resume(r.Context(), r.PathValue("id"), userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot(time.Now()))
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	session, err := s.timers.Complete(r.Context(), r.PathValue("id"), userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot(time.Now()))
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	session, err := s.timers.Cancel(r.Context(), r.PathValue("id"), userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot(time.Now()))
}

type metricsRequest struct {
	TabSwitches        int `json:"tabSwitches"`
	DistractionMinutes int `json:"distractionMinutes"`
	FocusBreaks        int `json:"focusBreaks"`
	NotesCount         int `json:"notesCount"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var body metricsRequest
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	session, err := s.timers.UpdateMetrics(r.Context(), r.PathValue("id"), userID(r), domain.MetricsUpdate{
		TabSwitches:        body.TabSwitches,
		DistractionMinutes: body.DistractionMinutes,
		FocusBreaks:        body.FocusBreaks,
		NotesCount:         body.NotesCount,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot(time.Now()))
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	session, err := s.timers.Current(r.Context(), userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if session == nil {
		writeJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active":  true,
		"session": session.Snapshot(time.Now()),
	})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	state, err := s.timers.Sync(r.Context(), userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	page := intQuery(r, "page", 0)
	size := intQuery(r, "size", 20)

	sessions, err := s.timers.History(r.Context(), userID(r), page, size)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	now := time.Now()
	items := make([]domain.SessionSnapshot, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, session.Snapshot(now))
	}
	writeJSON(w, http.StatusOK, map[string]any{"page": page, "size": size, "items": items})
}

func (s *Server) handleHiveSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.timers.HiveActive(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	now := time.Now()
	items := make([]domain.SessionSnapshot, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, session.Snapshot(now))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
