// Package memory implements an in-memory storage backend for development
// and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/focushive/hivetimer/internal/domain"
	"github.com/focushive/hivetimer/internal/ports"
)

// DB implements ports.Storage entirely in memory.
type DB struct {
	mu       sync.Mutex
	sessions map[string]*domain.FocusSession
	stats    map[string]map[string]*domain.ProductivityStats
	settings map[string]domain.PomodoroSettings
}

// Ensure interfaces are met.
var _ ports.Storage = (*DB)(nil)
var _ ports.SessionRepository = (*DB)(nil)
var _ ports.StatsRepository = (*DB)(nil)
var _ ports.SettingsRepository = (*settingsRepo)(nil)

// New creates a new in-memory storage.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.FocusSession),
		stats:    make(map[string]map[string]*domain.ProductivityStats),
		settings: make(map[string]domain.PomodoroSettings),
	}
}

func (db *DB) Sessions() ports.SessionRepository  { return db }
func (db *DB) Stats() ports.StatsRepository       { return db }
func (db *DB) Settings() ports.SettingsRepository { return &settingsRepo{db: db} }

// Close is a no-op for the in-memory backend.
func (db *DB) Close() error { return nil }

// Migrate is a no-op for the in-memory backend.
func (db *DB) Migrate() error { return nil }

// --- SessionRepository ---

// Save inserts a new session, enforcing the single active session rule the
// way the SQL backends' partial unique index does.
func (db *DB) Save(ctx context.Context, session *domain.FocusSession) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, s := range db.sessions {
		if s.UserID == session.UserID && !s.Status.IsTerminal() {
			return domain.ErrSessionConflict
		}
	}

	clone := *session
	db.sessions[session.ID] = &clone
	return nil
}

// Update modifies an existing session.
func (db *DB) Update(ctx context.Context, session *domain.FocusSession) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.sessions[session.ID]; !ok {
		return domain.ErrSessionNotFound
	}
	clone := *session
	db.sessions[session.ID] = &clone
	return nil
}

// FindByID retrieves a session by id, or (nil, nil).
func (db *DB) FindByID(ctx context.Context, id string) (*domain.FocusSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if s, ok := db.sessions[id]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, nil
}

// FindActiveByUser retrieves the user's non-terminal session, or (nil, nil).
func (db *DB) FindActiveByUser(ctx context.Context, userID string) (*domain.FocusSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, s := range db.sessions {
		if s.UserID == userID && !s.Status.IsTerminal() {
			clone := *s
			return &clone, nil
		}
	}
	return nil, nil
}

// FindHistoryByUser retrieves the user's sessions newest-first, paginated.
func (db *DB) FindHistoryByUser(ctx context.Context, userID string, page, size int) ([]*domain.FocusSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var result []*domain.FocusSession
	for _, s := range db.sessions {
		if s.UserID == userID {
			clone := *s
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})

	offset := page * size
	if offset >= len(result) {
		return nil, nil
	}
	end := offset + size
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

// FindActiveByHive retrieves the hive's non-terminal sessions.
func (db *DB) FindActiveByHive(ctx context.Context, hiveID string) ([]*domain.FocusSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var result []*domain.FocusSession
	for _, s := range db.sessions {
		if s.HiveID != nil && *s.HiveID == hiveID && !s.Status.IsTerminal() {
			clone := *s
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.Before(result[j].StartedAt)
	})
	return result, nil
}

// FindCompletedDays returns the distinct start dates of completed sessions.
func (db *DB) FindCompletedDays(ctx context.Context, userID string) ([]time.Time, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	seen := make(map[time.Time]struct{})
	var days []time.Time
	for _, s := range db.sessions {
		if s.UserID != userID || s.Status != domain.SessionStatusCompleted {
			continue
		}
		day := domain.DateOf(s.StartedAt)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

// FindRecentScores returns the newest rated completed sessions' scores in
// chronological order.
func (db *DB) FindRecentScores(ctx context.Context, userID string, limit int) ([]int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var rated []*domain.FocusSession
	for _, s := range db.sessions {
		if s.UserID == userID && s.Status == domain.SessionStatusCompleted && s.ProductivityScore != nil {
			rated = append(rated, s)
		}
	}
	sort.Slice(rated, func(i, j int) bool {
		return rated[i].StartedAt.Before(rated[j].StartedAt)
	})
	if len(rated) > limit {
		rated = rated[len(rated)-limit:]
	}

	scores := make([]int, 0, len(rated))
	for _, s := range rated {
		scores = append(scores, *s.ProductivityScore)
	}
	return scores, nil
}

// FindStaleActive returns non-terminal sessions started before the cutoff.
func (db *DB) FindStaleActive(ctx context.Context, cutoff time.Time) ([]*domain.FocusSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var result []*domain.FocusSession
	for _, s := range db.sessions {
		if !s.Status.IsTerminal() && s.StartedAt.Before(cutoff) {
			clone := *s
			result = append(result, &clone)
		}
	}
	return result, nil
}

// --- StatsRepository ---

const dateKeyLayout = "2006-01-02"

// Upsert creates the (user, date) aggregate lazily and folds the delta in.
func (db *DB) Upsert(ctx context.Context, userID string, date time.Time, delta domain.StatsDelta) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	byDate, ok := db.stats[userID]
	if !ok {
		byDate = make(map[string]*domain.ProductivityStats)
		db.stats[userID] = byDate
	}

	key := date.Format(dateKeyLayout)
	stats, ok := byDate[key]
	if !ok {
		stats = &domain.ProductivityStats{
			UserID: userID,
			Date:   domain.DateOf(date),
		}
		byDate[key] = stats
	}
	stats.Apply(delta)
	return nil
}

// FindByUserAndDate retrieves one day's aggregate, or (nil, nil).
func (db *DB) FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*domain.ProductivityStats, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if stats, ok := db.stats[userID][date.Format(dateKeyLayout)]; ok {
		clone := *stats
		return &clone, nil
	}
	return nil, nil
}

// FindByUserAndDateRange retrieves aggregates for [from, to], ordered by date.
func (db *DB) FindByUserAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.ProductivityStats, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	fromKey := from.Format(dateKeyLayout)
	toKey := to.Format(dateKeyLayout)

	var result []*domain.ProductivityStats
	for key, stats := range db.stats[userID] {
		if key >= fromKey && key <= toKey {
			clone := *stats
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// --- SettingsRepository ---

// settingsRepo is a narrow view over DB; the port's Save would otherwise
// collide with the session Save in DB's method set.
type settingsRepo struct {
	db *DB
}

// Find retrieves the user's settings, or (nil, nil).
func (r *settingsRepo) Find(ctx context.Context, userID string) (*domain.PomodoroSettings, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.settings[userID]; ok {
		return &s, nil
	}
	return nil, nil
}

// Save inserts or wholesale-replaces the user's settings.
func (r *settingsRepo) Save(ctx context.Context, s domain.PomodoroSettings) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.settings[s.UserID] = s
	return nil
}
