// Package storage provides SQLite implementations of the storage ports.
package storage

import (
	"database/sql"
	"fmt"

	"github.com/focushive/hivetimer/internal/ports"
	"modernc.org/sqlite"
)

// sqliteStorage implements the ports.Storage interface using SQLite.
type sqliteStorage struct {
	db           *sql.DB
	sessionRepo  ports.SessionRepository
	statsRepo    ports.StatsRepository
	settingsRepo ports.SettingsRepository
}

// Ensure sqliteStorage implements ports.Storage.
var _ ports.Storage = (*sqliteStorage)(nil)

// New creates a new SQLite storage instance.
func New(dbPath string) (ports.Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys and WAL mode for better performance
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	storage := &sqliteStorage{
		db:           db,
		sessionRepo:  newSessionRepository(db),
		statsRepo:    newStatsRepository(db),
		settingsRepo: newSettingsRepository(db),
	}

	if err := storage.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return storage, nil
}

// NewMemory creates a new in-memory SQLite storage instance for testing.
func NewMemory() (ports.Storage, error) {
	return New(":memory:")
}

// Sessions returns the session repository.
func (s *sqliteStorage) Sessions() ports.SessionRepository {
	return s.sessionRepo
}

// Stats returns the daily stats repository.
func (s *sqliteStorage) Stats() ports.StatsRepository {
	return s.statsRepo
}

// Settings returns the settings repository.
func (s *sqliteStorage) Settings() ports.SettingsRepository {
	return s.settingsRepo
}

// Close closes the database connection.
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

// Migrate creates the database schema.
func (s *sqliteStorage) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		hive_id TEXT,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		title TEXT,
		notes TEXT,
		planned_ms INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		paused_at DATETIME,
		resumed_at DATETIME,
		ended_at DATETIME,
		total_paused_ms INTEGER NOT NULL DEFAULT 0,
		actual_ms INTEGER NOT NULL DEFAULT 0,
		interruptions INTEGER NOT NULL DEFAULT 0,
		tab_switches INTEGER NOT NULL DEFAULT 0,
		distraction_minutes INTEGER NOT NULL DEFAULT 0,
		focus_breaks INTEGER NOT NULL DEFAULT 0,
		notes_count INTEGER NOT NULL DEFAULT 0,
		productivity_score INTEGER,
		reminder_enabled INTEGER NOT NULL DEFAULT 0,
		reminder_lead_ms INTEGER NOT NULL DEFAULT 0,
		version INTEGER NOT NULL DEFAULT 0
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active_per_user
		ON sessions(user_id) WHERE status IN ('ACTIVE', 'PAUSED');

	CREATE INDEX IF NOT EXISTS idx_sessions_user_started ON sessions(user_id, started_at);
	CREATE INDEX IF NOT EXISTS idx_sessions_hive ON sessions(hive_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);

	CREATE TABLE IF NOT EXISTS daily_stats (
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		sessions_started INTEGER NOT NULL DEFAULT 0,
		sessions_completed INTEGER NOT NULL DEFAULT 0,
		total_focus_minutes INTEGER NOT NULL DEFAULT 0,
		total_break_minutes INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, date)
	);

	CREATE TABLE IF NOT EXISTS settings (
		user_id TEXT PRIMARY KEY,
		work_minutes INTEGER NOT NULL,
		short_break_minutes INTEGER NOT NULL,
		long_break_minutes INTEGER NOT NULL,
		sessions_until_long_break INTEGER NOT NULL,
		auto_start_breaks INTEGER NOT NULL DEFAULT 0,
		auto_start_work INTEGER NOT NULL DEFAULT 0,
		notification_enabled INTEGER NOT NULL DEFAULT 1,
		sound_enabled INTEGER NOT NULL DEFAULT 1
	);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// isUniqueConstraintError checks if an error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	sqliteErr, ok := err.(*sqlite.Error)
	return ok && sqliteErr.Code() == 2067 // SQLITE_CONSTRAINT_UNIQUE
}
