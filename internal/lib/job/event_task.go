package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TaskEventChanged is the Asynq task type for event change notifications.
	TaskEventChanged = "event:changed"

	NotificationEventCreated = "event_created"
	NotificationEventUpdated = "event_updated"
)

// EventChangedPayload is the task payload. Username is set for submission updates.
type EventChangedPayload struct {
	EventURI string `json:"eventURI"`
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
}

// NewEventChangedTask builds the task. Notifications are best effort: a few
// retries, then dropped.
func NewEventChangedTask(payload EventChangedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event changed payload: %w", err)
	}

	return asynq.NewTask(
		TaskEventChanged,
		data,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}
