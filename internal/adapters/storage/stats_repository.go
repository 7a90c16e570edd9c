package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/focushive/hivetimer/internal/domain"
	"github.com/focushive/hivetimer/internal/ports"
)

const dateLayout = "2006-01-02"

// statsRepository implements ports.StatsRepository using SQLite. Dates are
// stored as YYYY-MM-DD strings keyed with the user id.
type statsRepository struct {
	db *sql.DB
}

// newStatsRepository creates a new stats repository.
func newStatsRepository(db *sql.DB) ports.StatsRepository {
	return &statsRepository{db: db}
}

// Upsert creates the (user, date) row lazily and folds the delta in.
func (r *statsRepository) Upsert(ctx context.Context, userID string, date time.Time, delta domain.StatsDelta) error {
	query := `
		INSERT INTO daily_stats (
			user_id, date, sessions_started, sessions_completed,
			total_focus_minutes, total_break_minutes
		)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET
			sessions_started = sessions_started + excluded.sessions_started,
			sessions_completed = sessions_completed + excluded.sessions_completed,
			total_focus_minutes = total_focus_minutes + excluded.total_focus_minutes,
			total_break_minutes = total_break_minutes + excluded.total_break_minutes
	`

	_, err := r.db.ExecContext(ctx, query,
		userID,
		date.Format(dateLayout),
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

// FindByUserAndDate retrieves one day's aggregate.
func (r *statsRepository) FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*domain.ProductivityStats, error) {
	query := `
		SELECT user_id, date, sessions_started, sessions_completed,
		       total_focus_minutes, total_break_minutes
		FROM daily_stats
		WHERE user_id = ? AND date = ?
	`

	stats, err := scanStats(r.db.QueryRowContext(ctx, query, userID, date.Format(dateLayout)))
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
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID,
		from.Format(dateLayout), to.Format(dateLayout))
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
	var dateStr string

	err := row.Scan(
		&stats.UserID,
		&dateStr,
		&stats.SessionsStarted,
		&stats.SessionsCompleted,
		&stats.TotalFocusMinutes,
		&stats.TotalBreakMinutes,
	)
	if err != nil {
		return nil, err
	}

	date, err := time.ParseInLocation(dateLayout, dateStr, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stats date %q: %w", dateStr, err)
	}
	stats.Date = date
	stats.RecomputeFocusRatio()

	return &stats, nil
}
