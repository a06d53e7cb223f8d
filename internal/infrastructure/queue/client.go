package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"yamdb-backend/internal/shared"
)

// Enqueuer is the part of *asynq.Client the producer uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Client produces tasks for the worker.
type Client struct {
	enqueuer Enqueuer
}

func NewClient(enqueuer Enqueuer) *Client {
	return &Client{enqueuer: enqueuer}
}

// EnqueueConfirmationCode schedules the confirmation email. The task outlives
// neither the code nor a day of retries.
func (c *Client) EnqueueConfirmationCode(ctx context.Context, payload shared.ConfirmationCodePayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal confirmation payload: %w", err)
	}

	opts := []asynq.Option{
		asynq.Queue(shared.QueueCritical),
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
	}
	if !payload.ExpiresAt.IsZero() {
		opts = append(opts, asynq.Deadline(payload.ExpiresAt))
	}

	info, err := c.enqueuer.EnqueueContext(ctx, asynq.NewTask(shared.TypeSendConfirmationCode, data), opts...)
	if err != nil {
		return fmt.Errorf("enqueue confirmation code: %w", err)
	}

	log.Debug().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Int64("user_id", payload.UserID).
		Msg("confirmation code enqueued")
	return nil
}
