package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/focushive/hivetimer/internal/domain"
	"github.com/focushive/hivetimer/internal/ports"
)

// settingsRepository implements ports.SettingsRepository using SQLite.
type settingsRepository struct {
	db *sql.DB
}

// newSettingsRepository creates a new settings repository.
func newSettingsRepository(db *sql.DB) ports.SettingsRepository {
	return &settingsRepository{db: db}
}

// Find retrieves the user's settings, or (nil, nil) when none exist.
func (r *settingsRepository) Find(ctx context.Context, userID string) (*domain.PomodoroSettings, error) {
	query := `
		SELECT user_id, work_minutes, short_break_minutes, long_break_minutes,
		       sessions_until_long_break, auto_start_breaks, auto_start_work,
		       notification_enabled, sound_enabled
		FROM settings
		WHERE user_id = ?
	`

	var s domain.PomodoroSettings
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID,
		&s.WorkDurationMinutes,
		&s.ShortBreakMinutes,
		&s.LongBreakMinutes,
		&s.SessionsUntilLongBreak,
		&s.AutoStartBreaks,
		&s.AutoStartWork,
		&s.NotificationEnabled,
		&s.SoundEnabled,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan settings: %w", err)
	}

	return &s, nil
}

// Save inserts or wholesale-replaces the user's settings.
func (r *settingsRepository) Save(ctx context.Context, s domain.PomodoroSettings) error {
	query := `
		INSERT INTO settings (
			user_id, work_minutes, short_break_minutes, long_break_minutes,
			sessions_until_long_break, auto_start_breaks, auto_start_work,
			notification_enabled, sound_enabled
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			work_minutes = excluded.work_minutes,
			short_break_minutes = excluded.short_break_minutes,
			long_break_minutes = excluded.long_break_minutes,
			sessions_until_long_break = excluded.sessions_until_long_break,
			auto_start_breaks = excluded.auto_start_breaks,
			auto_start_work = excluded.auto_start_work,
			notification_enabled = excluded.notification_enabled,
			sound_enabled = excluded.sound_enabled
	`

	_, err := r.db.ExecContext(ctx, query,
		s.UserID,
		s.WorkDurationMinutes,
		s.ShortBreakMinutes,
		s.LongBreakMinutes,
		s.SessionsUntilLongBreak,
		s.AutoStartBreaks,
		s.AutoStartWork,
		s.NotificationEnabled,
		s.SoundEnabled,
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return nil
}
