package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// defaultTimeout bounds every upstream call.
const defaultTimeout = 5 * time.Second

// TaskAPI is the slice of the upstream task-management API the consumers
// depend on.
type TaskAPI interface {
	// GetTask returns the task title, or "" when the task is not visible.
	GetTask(ctx context.Context, taskID, userID string) (string, error)
	// PatchReminderStatus records the delivery outcome of a reminder.
	PatchReminderStatus(ctx context.Context, reminderID, status string) error
}

// Reminder delivery statuses accepted by the upstream API.
const (
	ReminderStatusSent   = "sent"
	ReminderStatusFailed = "failed"
)

// Client calls the upstream task-management API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an upstream API client.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

// GetTask implements TaskAPI. A non-2xx answer is not an error: the
// caller falls back to a generic title.
func (c *Client) GetTask(ctx context.Context, taskID, userID string) (string, error) {
	url := fmt.Sprintf("%s/api/tasks/%s", c.baseURL, taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build task request: %w", err)
	}
	req.Header.Set("X-User-ID", userID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch task: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("task_fetch_unexpected_status",
			zap.String("task_id", taskID),
			zap.Int("status_code", resp.StatusCode),
		)
		return "", nil
	}

	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode task response: %w", err)
	}
	return body.Title, nil
}

// PatchReminderStatus implements TaskAPI.
func (c *Client) PatchReminderStatus(ctx context.Context, reminderID, status string) error {
	url := fmt.Sprintf("%s/api/reminders/%s/status", c.baseURL, reminderID)

	payload, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return fmt.Errorf("failed to marshal status payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to patch reminder status: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("reminder status update returned %d", resp.StatusCode)
	}

	c.logger.Info("reminder_status_updated",
		zap.String("reminder_id", reminderID),
		zap.String("status", status),
	)
	return nil
}

var _ TaskAPI = (*Client)(nil)
