// Package ports defines the interfaces between the timer core and external
// infrastructure, following hexagonal architecture: the core depends on
// these contracts, never on a concrete store or transport.
package ports

import (
	"context"
	"time"

	"github.com/focushive/hivetimer/internal/domain"
)

// SessionRepository persists focus sessions. Lookups return (nil, nil)
// when no row matches; errors are reserved for storage failures.
type SessionRepository interface {
	// Save inserts a new session. The store enforces the single
	// non-terminal session invariant: inserting while the user already has
	// an ACTIVE or PAUSED row fails with domain.ErrSessionConflict.
	Save(ctx context.Context, session *domain.FocusSession) error

	// Update modifies an existing session.
	Update(ctx context.Context, session *domain.FocusSession) error

	// FindByID retrieves a session by its unique identifier.
	FindByID(ctx context.Context, id string) (*domain.FocusSession, error)

	// FindActiveByUser retrieves the user's single ACTIVE or PAUSED
	// session, if any.
	FindActiveByUser(ctx context.Context, userID string) (*domain.FocusSession, error)

	// FindHistoryByUser retrieves the user's sessions newest-first.
	// Pages are zero-based.
	FindHistoryByUser(ctx context.Context, userID string, page, size int) ([]*domain.FocusSession, error)

	// FindActiveByHive retrieves all non-terminal sessions tagged with the
	// hive, for observers.
	FindActiveByHive(ctx context.Context, hiveID string) ([]*domain.FocusSession, error)

	// FindCompletedDays returns the distinct start dates of the user's
	// completed sessions, for streak computation.
	FindCompletedDays(ctx context.Context, userID string) ([]time.Time, error)

	// FindRecentScores returns the productivity scores of the user's most
	// recent rated completed sessions, in chronological order.
	FindRecentScores(ctx context.Context, userID string, limit int) ([]int, error)

	// FindStaleActive returns non-terminal sessions started before the
	// cutoff, for the expiry sweep.
	FindStaleActive(ctx context.Context, cutoff time.Time) ([]*domain.FocusSession, error)
}

// StatsRepository persists per-(user, date) productivity aggregates.
type StatsRepository interface {
	// Upsert creates the aggregate row lazily and folds the delta in.
	Upsert(ctx context.Context, userID string, date time.Time, delta domain.StatsDelta) error

	// FindByUserAndDate retrieves one day's aggregate, or (nil, nil).
	FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*domain.ProductivityStats, error)

	// FindByUserAndDateRange retrieves aggregates for [from, to] inclusive,
	// ordered by date.
	FindByUserAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.ProductivityStats, error)
}

// SettingsRepository persists per-user Pomodoro settings.
type SettingsRepository interface {
	// Find retrieves the user's settings, or (nil, nil) when none exist.
	Find(ctx context.Context, userID string) (*domain.PomodoroSettings, error)

	// Save inserts or wholesale-replaces the user's settings.
	Save(ctx context.Context, settings domain.PomodoroSettings) error
}

// Storage is the combined repository interface implemented by adapters.
type Storage interface {
	Sessions() SessionRepository
	Stats() StatsRepository
	Settings() SettingsRepository

	// Close closes the storage connection.
	Close() error

	// Migrate creates or upgrades the schema.
	Migrate() error
}
