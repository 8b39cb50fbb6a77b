package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskWelcome      = "email:welcome"
	TaskBillingEvent = "billing:event"
)

type WelcomeEmailPayload struct {
	To   string `json:"to"`
	Name string `json:"name"`
}

func NewWelcomeEmailTask(to, name string) (*asynq.Task, error) {
	payload, err := json.Marshal(WelcomeEmailPayload{
		To:   to,
		Name: name,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskWelcome,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueDefault),
		asynq.Timeout(30*time.Second),
	), nil
}

// BillingEventPayload references a row of the billing event ledger; the
// event itself is read back from the database.
type BillingEventPayload struct {
	EventID string `json:"event_id"`
}

// NewBillingEventTask builds the task processing one webhook event. The task
// id is the event id, so a redelivered webhook cannot queue it twice while
// the first task is retained.
func NewBillingEventTask(eventID string) (*asynq.Task, error) {
	payload, err := json.Marshal(BillingEventPayload{EventID: eventID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskBillingEvent,
		payload,
		asynq.TaskID(eventID),
		asynq.MaxRetry(10),
		asynq.Queue(QueueCritical),
		asynq.Timeout(time.Minute),
		asynq.Retention(24*time.Hour),
	), nil
}
