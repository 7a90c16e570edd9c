package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/focushive/hivetimer/internal/domain"
)

// Client talks to the timer server's REST API.
type Client struct {
	baseURL string
	token   string
	user    string
	http    *http.Client
}

// NewAPIClient creates a client for the given server. When token is empty
// the user ID is sent directly, which the server accepts in disabled-auth
// mode.
func NewAPIClient(baseURL, token, user string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		user:    user,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// serverError is the error payload returned by the API.
type serverError struct {
	Message string `json:"error"`
	Action  string `json:"action,omitempty"`
}

func (e *serverError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Action)
	}
	return e.Message
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	} else {
		req.Header.Set("X-User-ID", c.user)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr serverError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Message == "" {
			return fmt.Errorf("server returned %s", resp.Status)
		}
		return &apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// StartRequest carries the parameters for a new session.
type StartRequest struct {
	Type            string  `json:"sessionType"`
	DurationMinutes int     `json:"durationMinutes"`
	HiveID          *string `json:"hiveId,omitempty"`
	Title           string  `json:"title,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	ReminderEnabled bool    `json:"reminderEnabled,omitempty"`
	ReminderMinutes int     `json:"reminderMinutesBefore,omitempty"`
}

// StartSession starts a new focus session.
func (c *Client) StartSession(ctx context.Context, req StartRequest) (*domain.SessionSnapshot, error) {
	var snap domain.SessionSnapshot
	if err := c.do(ctx, http.MethodPost, "/sessions", req, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Current returns the user's active session, or nil when there is none.
func (c *Client) Current(ctx context.Context) (*domain.SessionSnapshot, error) {
	var body struct {
		Active  bool                    `json:"active"`
		Session *domain.SessionSnapshot `json:"session"`
	}
	if err := c.do(ctx, http.MethodGet, "/sessions/current", nil, &body); err != nil {
		return nil, err
	}
	if !body.Active {
		return nil, nil
	}
	return body.Session, nil
}

// Sync fetches the lightweight synchronization state.
func (c *Client) Sync(ctx context.Context) (*domain.SyncState, error) {
	var state domain.SyncState
	if err := c.do(ctx, http.MethodGet, "/sessions/sync", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Pause pauses the session.
func (c *Client) Pause(ctx context.Context, id string) (*domain.SessionSnapshot, error) {
	return c.transition(ctx, id, "pause")
}

// Resume resumes the session.
func (c *Client) Resume(ctx context.Context, id string) (*domain.SessionSnapshot, error) {
	return c.transition(ctx, id, "resume")
}

// Complete completes the session.
func (c *Client) Complete(ctx context.Context, id string) (*domain.SessionSnapshot, error) {
	return c.transition(ctx, id, "complete")
}

// Cancel cancels the session.
func (c *Client) Cancel(ctx context.Context, id string) (*domain.SessionSnapshot, error) {
	return c.transition(ctx, id, "cancel")
}

func (c *Client) transition(ctx context.Context, id, action string) (*domain.SessionSnapshot, error) {
	var snap domain.SessionSnapshot
	if err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/"+action, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// History fetches a page of the user's past sessions, newest first.
func (c *Client) History(ctx context.Context, page, size int) ([]domain.SessionSnapshot, error) {
	var body struct {
		Items []domain.SessionSnapshot `json:"items"`
	}
	path := fmt.Sprintf("/sessions/history?page=%d&size=%d", page, size)
	if err := c.do(ctx, http.MethodGet, path, nil, &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

// HiveSessions lists the non-terminal sessions in a hive.
func (c *Client) HiveSessions(ctx context.Context, hiveID string) ([]domain.SessionSnapshot, error) {
	var body struct {
		Items []domain.SessionSnapshot `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/hives/"+hiveID+"/sessions", nil, &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

// DailyStats fetches one day's aggregate. Date is YYYY-MM-DD; empty means
// today.
func (c *Client) DailyStats(ctx context.Context, date string) (*domain.ProductivityStats, error) {
	path := "/stats/daily"
	if date != "" {
		path += "?date=" + date
	}
	var stats domain.ProductivityStats
	if err := c.do(ctx, http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// WeeklyStats fetches the seven days starting at the given date.
func (c *Client) WeeklyStats(ctx context.Context, start string) ([]domain.ProductivityStats, error) {
	path := "/stats/weekly"
	if start != "" {
		path += "?start=" + start
	}
	var body struct {
		Days []domain.ProductivityStats `json:"days"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &body); err != nil {
		return nil, err
	}
	return body.Days, nil
}

// MonthlyStats fetches one calendar month of aggregates. Month is YYYY-MM.
func (c *Client) MonthlyStats(ctx context.Context, month string) ([]domain.ProductivityStats, error) {
	path := "/stats/monthly"
	if month != "" {
		path += "?month=" + month
	}
	var body struct {
		Days []domain.ProductivityStats `json:"days"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &body); err != nil {
		return nil, err
	}
	return body.Days, nil
}

// Streak fetches the user's streak and trend summary.
func (c *Client) Streak(ctx context.Context) (*domain.StreakInfo, error) {
	var streak domain.StreakInfo
	if err := c.do(ctx, http.MethodGet, "/stats/streak", nil, &streak); err != nil {
		return nil, err
	}
	return &streak, nil
}

// Settings fetches the user's timer settings.
func (c *Client) Settings(ctx context.Context) (*domain.PomodoroSettings, error) {
	var settings domain.PomodoroSettings
	if err := c.do(ctx, http.MethodGet, "/settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveSettings replaces the user's timer settings wholesale.
func (c *Client) SaveSettings(ctx context.Context, settings domain.PomodoroSettings) (*domain.PomodoroSettings, error) {
	var updated domain.PomodoroSettings
	if err := c.do(ctx, http.MethodPut, "/settings", settings, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
