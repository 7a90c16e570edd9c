package domain

import "fmt"

// PomodoroSettings is a user's timer configuration. It is created with
// defaults on first access and replaced wholesale on update; there is no
// partial-field merge.
type PomodoroSettings struct {
	UserID                 string `json:"userId"`
	WorkDurationMinutes    int    `json:"workDurationMinutes"`
	ShortBreakMinutes      int    `json:"shortBreakMinutes"`
	LongBreakMinutes       int    `json:"longBreakMinutes"`
	SessionsUntilLongBreak int    `json:"sessionsUntilLongBreak"`
	AutoStartBreaks        bool   `json:"autoStartBreaks"`
	AutoStartWork          bool   `json:"autoStartWork"`
	NotificationEnabled    bool   `json:"notificationEnabled"`
	SoundEnabled           bool   `json:"soundEnabled"`
}

// DefaultPomodoroSettings returns the standard 25/5/15/4 configuration.
func DefaultPomodoroSettings(userID string) PomodoroSettings {
	return PomodoroSettings{
		UserID:                 userID,
		WorkDurationMinutes:    25,
		ShortBreakMinutes:      5,
		LongBreakMinutes:       15,
		SessionsUntilLongBreak: 4,
		AutoStartBreaks:        false,
		AutoStartWork:          false,
		NotificationEnabled:    true,
		SoundEnabled:           true,
	}
}

// Validate rejects settings with non-positive durations or cycle length.
func (p PomodoroSettings) Validate() error {
	if p.WorkDurationMinutes <= 0 || p.ShortBreakMinutes <= 0 || p.LongBreakMinutes <= 0 {
		return fmt.Errorf("%w: durations must be positive", ErrValidation)
	}
	if p.SessionsUntilLongBreak <= 0 {
		return fmt.Errorf("%w: sessions until long break must be positive", ErrValidation)
	}
	return nil
}
