package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/focushive/hivetimer/internal/domain"
	"github.com/focushive/hivetimer/internal/ports"
)

// SettingsService manages per-user pomodoro preferences.
type SettingsService struct {
	storage ports.Storage
	logger  *slog.Logger
}

func NewSettingsService(storage ports.Storage, logger *slog.Logger) *SettingsService {
	return &SettingsService{storage: storage, logger: logger}
}

// Get returns the user's settings, creating and persisting the defaults on
// first access.
func (s *SettingsService) Get(ctx context.Context, userID string) (*domain.PomodoroSettings, error) {
	settings, err := s.storage.Settings().Find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if settings != nil {
		return settings, nil
	}

	defaults := domain.DefaultPomodoroSettings(userID)
	if err := s.storage.Settings().Save(ctx, defaults); err != nil {
		return nil, fmt.Errorf("failed to save default settings: %w", err)
	}
	s.logger.Debug("created default settings", "user_id", userID)
	return &defaults, nil
}

// Replace validates and stores the full settings document.
func (s *SettingsService) Replace(ctx context.Context, settings domain.PomodoroSettings) (*domain.PomodoroSettings, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := s.storage.Settings().Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return &settings, nil
}
