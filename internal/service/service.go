// Package service holds the logic that sits between handlers and
// repositories: work this service does on top of the provider (queueing
// welcome e-mails) and the payment webhook intake.
package service

import (
	"context"

	"github.com/hibiken/asynq"
)

// TaskEnqueuer queues background tasks. *asynq.Client implements it.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
