package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/focushive/hivetimer/internal/domain"
)

// settingsRepository implements ports.SettingsRepository on PostgreSQL.
type settingsRepository struct {
	db *sql.DB
}

// Find retrieves the user's settings, or (nil, nil) when none exist.
func (r *settingsRepository) Find(ctx context.Context, userID string) (*domain.PomodoroSettings, error) {
	query := `
		SELECT user_id, work_minutes, short_break_minutes, long_break_minutes,
		       sessions_until_long_break, auto_start_breaks, auto_start_work,
		       notification_enabled, sound_enabled
		FROM settings
		WHERE user_id = $1
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			work_minutes = EXCLUDED.work_minutes,
			short_break_minutes = EXCLUDED.short_break_minutes,
			long_break_minutes = EXCLUDED.long_break_minutes,
			sessions_until_long_break = EXCLUDED.sessions_until_long_break,
			auto_start_breaks = EXCLUDED.auto_start_breaks,
			auto_start_work = EXCLUDED.auto_start_work,
			notification_enabled = EXCLUDED.notification_enabled,
			sound_enabled = EXCLUDED.sound_enabled
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
