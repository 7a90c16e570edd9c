package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/focushive/hivetimer/internal/domain"
	"github.com/focushive/hivetimer/internal/ports"
)

const sessionColumns = `
	id, user_id, hive_id, type, status, title, notes, planned_ms,
	started_at, paused_at, resumed_at, ended_at, total_paused_ms, actual_ms,
	interruptions, tab_switches, distraction_minutes, focus_breaks,
	notes_count, productivity_score, reminder_enabled, reminder_lead_ms, version
`

// sessionRepository implements ports.SessionRepository using SQLite.
type sessionRepository struct {
	db *sql.DB
}

// newSessionRepository creates a new session repository.
func newSessionRepository(db *sql.DB) ports.SessionRepository {
	return &sessionRepository{db: db}
}

// Save persists a new session. The partial unique index on (user_id) for
// non-terminal rows is the storage-level backstop for the single active
// session invariant; a violation surfaces as domain.ErrSessionConflict.
func (r *sessionRepository) Save(ctx context.Context, session *domain.FocusSession) error {
	query := `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.HiveID,
		string(session.Type),
		string(session.Status),
		session.Title,
		session.Notes,
		session.PlannedDuration.Milliseconds(),
		session.StartedAt,
		session.PausedAt,
		session.ResumedAt,
		session.EndedAt,
		session.TotalPaused.Milliseconds(),
		session.ActualDuration.Milliseconds(),
		session.Interruptions,
		session.TabSwitches,
		session.DistractionMinutes,
		session.FocusBreaks,
		session.NotesCount,
		session.ProductivityScore,
		session.ReminderEnabled,
		session.ReminderLead.Milliseconds(),
		session.Version,
	)

	if isUniqueConstraintError(err) {
		return domain.ErrSessionConflict
	}
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Update modifies an existing session.
func (r *sessionRepository) Update(ctx context.Context, session *domain.FocusSession) error {
	query := `
		UPDATE sessions
		SET status = ?, title = ?, notes = ?, paused_at = ?, resumed_at = ?,
		    ended_at = ?, total_paused_ms = ?, actual_ms = ?, interruptions = ?,
		    tab_switches = ?, distraction_minutes = ?, focus_breaks = ?,
		    notes_count = ?, productivity_score = ?, version = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		string(session.Status),
		session.Title,
		session.Notes,
		session.PausedAt,
		session.ResumedAt,
		session.EndedAt,
		session.TotalPaused.Milliseconds(),
		session.ActualDuration.Milliseconds(),
		session.Interruptions,
		session.TabSwitches,
		session.DistractionMinutes,
		session.FocusBreaks,
		session.NotesCount,
		session.ProductivityScore,
		session.Version,
		session.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("session not found: %s", session.ID)
	}

	return nil
}

// FindByID retrieves a session by its unique identifier.
func (r *sessionRepository) FindByID(ctx context.Context, id string) (*domain.FocusSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	return r.scanSession(r.db.QueryRowContext(ctx, query, id))
}

// FindActiveByUser retrieves the user's single ACTIVE or PAUSED session.
func (r *sessionRepository) FindActiveByUser(ctx context.Context, userID string) (*domain.FocusSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = ? AND status IN (?, ?)
		ORDER BY started_at DESC
		LIMIT 1
	`

	return r.scanSession(r.db.QueryRowContext(ctx, query, userID,
		string(domain.SessionStatusActive),
		string(domain.SessionStatusPaused)))
}

// FindHistoryByUser retrieves the user's sessions newest-first, paginated.
func (r *sessionRepository) FindHistoryByUser(ctx context.Context, userID string, page, size int) ([]*domain.FocusSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = ?
		ORDER BY started_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, size, page*size)
	if err != nil {
		return nil, fmt.Errorf("failed to query session history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return r.scanSessions(rows)
}

// FindActiveByHive retrieves all non-terminal sessions in a hive.
func (r *sessionRepository) FindActiveByHive(ctx context.Context, hiveID string) ([]*domain.FocusSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE hive_id = ? AND status IN (?, ?)
		ORDER BY started_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, hiveID,
		string(domain.SessionStatusActive),
		string(domain.SessionStatusPaused))
	if err != nil {
		return nil, fmt.Errorf("failed to query hive sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return r.scanSessions(rows)
}

// FindCompletedDays returns the distinct start dates of completed sessions.
// started_at is stored RFC3339, so the first ten characters are YYYY-MM-DD.
func (r *sessionRepository) FindCompletedDays(ctx context.Context, userID string) ([]time.Time, error) {
	query := `
		SELECT DISTINCT substr(started_at, 1, 10)
		FROM sessions
		WHERE user_id = ? AND status = ?
		ORDER BY 1 ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, string(domain.SessionStatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("failed to query completed days: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var days []time.Time
	for rows.Next() {
		var dateStr string
		if err := rows.Scan(&dateStr); err != nil {
			return nil, fmt.Errorf("failed to scan completed day: %w", err)
		}
		day, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("failed to parse completed day %q: %w", dateStr, err)
		}
		days = append(days, day)
	}

	return days, rows.Err()
}

// FindRecentScores returns the newest rated completed sessions' scores in
// chronological order.
func (r *sessionRepository) FindRecentScores(ctx context.Context, userID string, limit int) ([]int, error) {
	query := `
		SELECT productivity_score FROM (
			SELECT productivity_score, started_at
			FROM sessions
			WHERE user_id = ? AND status = ? AND productivity_score IS NOT NULL
			ORDER BY started_at DESC
			LIMIT ?
		)
		ORDER BY started_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, string(domain.SessionStatusCompleted), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var scores []int
	for rows.Next() {
		var score int
		if err := rows.Scan(&score); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, score)
	}

	return scores, rows.Err()
}

// FindStaleActive returns non-terminal sessions started before the cutoff.
func (r *sessionRepository) FindStaleActive(ctx context.Context, cutoff time.Time) ([]*domain.FocusSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE status IN (?, ?) AND started_at < ?
	`

	rows, err := r.db.QueryContext(ctx, query,
		string(domain.SessionStatusActive),
		string(domain.SessionStatusPaused),
		cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return r.scanSessions(rows)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanInto reads one row's columns into a session.
func scanInto(row rowScanner) (*domain.FocusSession, error) {
	var session domain.FocusSession
	var hiveID sql.NullString
	var title sql.NullString
	var notes sql.NullString
	var plannedMs int64
	var pausedAt sql.NullTime
	var resumedAt sql.NullTime
	var endedAt sql.NullTime
	var totalPausedMs int64
	var actualMs int64
	var score sql.NullInt64
	var reminderLeadMs int64

	err := row.Scan(
		&session.ID,
		&session.UserID,
		&hiveID,
		&session.Type,
		&session.Status,
		&title,
		&notes,
		&plannedMs,
		&session.StartedAt,
		&pausedAt,
		&resumedAt,
		&endedAt,
		&totalPausedMs,
		&actualMs,
		&session.Interruptions,
		&session.TabSwitches,
		&session.DistractionMinutes,
		&session.FocusBreaks,
		&session.NotesCount,
		&score,
		&session.ReminderEnabled,
		&reminderLeadMs,
		&session.Version,
	)
	if err != nil {
		return nil, err
	}

	session.PlannedDuration = time.Duration(plannedMs) * time.Millisecond
	session.TotalPaused = time.Duration(totalPausedMs) * time.Millisecond
	session.ActualDuration = time.Duration(actualMs) * time.Millisecond
	session.ReminderLead = time.Duration(reminderLeadMs) * time.Millisecond

	if hiveID.Valid && hiveID.String != "" {
		session.HiveID = &hiveID.String
	}
	if title.Valid {
		session.Title = title.String
	}
	if notes.Valid {
		session.Notes = notes.String
	}
	if pausedAt.Valid {
		session.PausedAt = &pausedAt.Time
	}
	if resumedAt.Valid {
		session.ResumedAt = &resumedAt.Time
	}
	if endedAt.Valid {
		session.EndedAt = &endedAt.Time
	}
	if score.Valid {
		s := int(score.Int64)
		session.ProductivityScore = &s
	}

	return &session, nil
}

// scanSession scans a single session row.
func (r *sessionRepository) scanSession(row *sql.Row) (*domain.FocusSession, error) {
	session, err := scanInto(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	return session, nil
}

// scanSessions scans multiple session rows.
func (r *sessionRepository) scanSessions(rows *sql.Rows) ([]*domain.FocusSession, error) {
	var sessions []*domain.FocusSession
	for rows.Next() {
		session, err := scanInto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}
