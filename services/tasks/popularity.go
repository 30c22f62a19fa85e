package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
)

const TypePopularityRefresh = "popularity:refresh"

// refreshWindow coalesces bursts of ingestions into one recount.
const refreshWindow = 30 * time.Second

func NewPopularityRefreshTask() (*asynq.Task, []asynq.Option) {
	task := asynq.NewTask(TypePopularityRefresh, nil)
	opts := []asynq.Option{
		asynq.Unique(refreshWindow),
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
	}
	return task, opts
}

// RefreshEnqueuer schedules a popularity recount.
type RefreshEnqueuer interface {
	EnqueueRefresh(ctx context.Context) error
}

type AsynqEnqueuer struct {
	client *asynq.Client
}

func NewAsynqEnqueuer(client *asynq.Client) *AsynqEnqueuer {
	return &AsynqEnqueuer{client: client}
}

// EnqueueRefresh treats an already pending refresh as success.
func (e *AsynqEnqueuer) EnqueueRefresh(ctx context.Context) error {
	task, opts := NewPopularityRefreshTask()
	_, err := e.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}
