// Package postgres implements the storage ports on PostgreSQL for shared
// multi-instance deployments.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/focushive/hivetimer/internal/ports"
)

// DB wraps a *sql.DB and implements ports.Storage.
type DB struct {
	sql          *sql.DB
	sessionRepo  ports.SessionRepository
	statsRepo    ports.StatsRepository
	settingsRepo ports.SettingsRepository
}

// Ensure DB implements ports.Storage.
var _ ports.Storage = (*DB)(nil)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{
		sql:          s,
		sessionRepo:  &sessionRepository{db: s},
		statsRepo:    &statsRepository{db: s},
		settingsRepo: &settingsRepository{db: s},
	}
	if err := d.Migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Sessions returns the session repository.
func (d *DB) Sessions() ports.SessionRepository { return d.sessionRepo }

// Stats returns the daily stats repository.
func (d *DB) Stats() ports.StatsRepository { return d.statsRepo }

// Settings returns the settings repository.
func (d *DB) Settings() ports.SettingsRepository { return d.settingsRepo }

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Migrate creates or upgrades the schema.
func (d *DB) Migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			hive_id TEXT,
			type TEXT NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('ACTIVE','PAUSED','COMPLETED','CANCELLED')),
			title TEXT,
			notes TEXT,
			planned_ms BIGINT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			paused_at TIMESTAMPTZ,
			resumed_at TIMESTAMPTZ,
			ended_at TIMESTAMPTZ,
			total_paused_ms BIGINT NOT NULL DEFAULT 0,
			actual_ms BIGINT NOT NULL DEFAULT 0,
			interruptions INTEGER NOT NULL DEFAULT 0,
			tab_switches INTEGER NOT NULL DEFAULT 0,
			distraction_minutes INTEGER NOT NULL DEFAULT 0,
			focus_breaks INTEGER NOT NULL DEFAULT 0,
			notes_count INTEGER NOT NULL DEFAULT 0,
			productivity_score INTEGER,
			reminder_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			reminder_lead_ms BIGINT NOT NULL DEFAULT 0,
			version INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active_per_user
			ON sessions(user_id) WHERE status IN ('ACTIVE', 'PAUSED');`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_started ON sessions(user_id, started_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_hive ON sessions(hive_id);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);`,
		`CREATE TABLE IF NOT EXISTS daily_stats (
			user_id TEXT NOT NULL,
			date DATE NOT NULL,
			sessions_started INTEGER NOT NULL DEFAULT 0,
			sessions_completed INTEGER NOT NULL DEFAULT 0,
			total_focus_minutes INTEGER NOT NULL DEFAULT 0,
			total_break_minutes INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, date)
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			user_id TEXT PRIMARY KEY,
			work_minutes INTEGER NOT NULL,
			short_break_minutes INTEGER NOT NULL,
			long_break_minutes INTEGER NOT NULL,
			sessions_until_long_break INTEGER NOT NULL,
			auto_start_breaks BOOLEAN NOT NULL DEFAULT FALSE,
			auto_start_work BOOLEAN NOT NULL DEFAULT FALSE,
			notification_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			sound_enabled BOOLEAN NOT NULL DEFAULT TRUE
		);`,
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// isUniqueViolation checks for the Postgres unique_violation error class.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
