package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/focushive/hivetimer/internal/domain"
)

// statsRepository implements ports.StatsRepository on PostgreSQL.
type statsRepository struct {
	db *sql.DB
}

// Upsert creates the (user, date) row lazily and folds the delta in.
func (r *statsRepository) Upsert(ctx context.Context, userID string, date time.Time, delta domain.StatsDelta) error {
	query := `
		INSERT INTO daily_stats (
			user_id, date, sessions_started, sessions_completed,
			total_focus_minutes, total_break_minutes
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, date) DO UPDATE SET
			sessions_started = daily_stats.sessions_started + EXCLUDED.sessions_started,
			sessions_completed = daily_stats.sessions_completed + EXCLUDED.sessions_completed,
			total_focus_minutes = daily_stats.total_focus_minutes + EXCLUDED.total_focus_minutes,
			total_break_minutes = daily_stats.total_break_minutes + EXCLUDED.total_break_minutes
	`

	_, err := r.db.ExecContext(ctx, query,
		userID,
		date.Format("2006-01-02"),
		delta.SessionsStarted,
		delta.SessionsCompleted,
		delta.FocusMinutes,
		delta.BreakMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily stats: %w", err)
	}
	return nil
}

// FindByUserAndDate retrieves one day's aggregate, or (nil, nil).
func (r *statsRepository) FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*domain.ProductivityStats, error) {
	query := `
		SELECT user_id, date, sessions_started, sessions_completed,
		       total_focus_minutes, total_break_minutes
		FROM daily_stats
		WHERE user_id = $1 AND date = $2
	`

	stats, err := scanStats(r.db.QueryRowContext(ctx, query, userID, date.Format("2006-01-02")))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan daily stats: %w", err)
	}
	return stats, nil
}

// FindByUserAndDateRange retrieves aggregates for [from, to], ordered by date.
func (r *statsRepository) FindByUserAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.ProductivityStats, error) {
	query := `
		SELECT user_id, date, sessions_started, sessions_completed,
		       total_focus_minutes, total_break_minutes
		FROM daily_stats
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID,
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query stats range: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*domain.ProductivityStats
	for rows.Next() {
		stats, err := scanStats(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		result = append(result, stats)
	}
	return result, rows.Err()
}

func scanStats(row rowScanner) (*domain.ProductivityStats, error) {
	var stats domain.ProductivityStats
	err := row.Scan(
		&stats.UserID,
		&stats.Date,
		&stats.SessionsStarted,
		&stats.SessionsCompleted,
		&stats.TotalFocusMinutes,
		&stats.TotalBreakMinutes,
	)
	if err != nil {
		return nil, err
	}
	stats.Date = stats.Date.UTC()
	stats.RecomputeFocusRatio()
	return &stats, nil
}
