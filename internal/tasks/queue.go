package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type inspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	Close() error
}

type QueueConfig struct {
	// Queue is the asynq queue tasks are submitted to and looked up in.
	Queue string
	// Retention keeps completed tasks, and their results, readable.
	Retention time.Duration
}

// Queue submits tasks and reads their state. Both asynq handles are safe for
// concurrent use.
type Queue struct {
	client    enqueuer
	inspector inspector
	queue     string
	retention time.Duration
}

func NewQueue(redisURL string, cfg QueueConfig) (*Queue, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse broker url: %w", err)
	}
	return newQueue(asynq.NewClient(opt), asynq.NewInspector(opt), cfg), nil
}

func newQueue(client enqueuer, insp inspector, cfg QueueConfig) *Queue {
	if cfg.Queue == "" {
		cfg.Queue = "default"
	}
	return &Queue{
		client:    client,
		inspector: insp,
		queue:     cfg.Queue,
		retention: cfg.Retention,
	}
}

// EnqueueAdd submits x+y and returns the broker-assigned task id without
// waiting for a worker.
func (q *Queue) EnqueueAdd(ctx context.Context, x, y int64) (string, error) {
	payload, err := json.Marshal(AddPayload{X: x, Y: y})
	if err != nil {
		return "", err
	}
	opts := []asynq.Option{asynq.Queue(q.queue), asynq.MaxRetry(0)}
	if q.retention > 0 {
		opts = append(opts, asynq.Retention(q.retention))
	}
	info, err := q.client.EnqueueContext(ctx, asynq.NewTask(TypeAdd, payload), opts...)
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", TypeAdd, err)
	}
	return info.ID, nil
}

// Lookup reports the current state of id. Unknown ids read as pending: the
// backend cannot tell a task that was never submitted from one that has not
// been recorded yet.
func (q *Queue) Lookup(ctx context.Context, id string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	info, err := q.inspector.GetTaskInfo(q.queue, id)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
			return Result{ID: id, State: StatePending}, nil
		}
		return Result{}, fmt.Errorf("lookup task %s: %w", id, err)
	}
	return resultFromInfo(id, info)
}

func resultFromInfo(id string, info *asynq.TaskInfo) (Result, error) {
	res := Result{ID: id, State: stateOf(info.State)}
	if res.State != StateSuccess {
		return res, nil
	}
	v, err := decodeResult(info.Result)
	if err != nil {
		return Result{}, fmt.Errorf("task %s: %w", id, err)
	}
	res.Value = &v
	return res, nil
}

// Running tasks report PENDING; there is no separate started state.
func stateOf(s asynq.TaskState) State {
	switch s {
	case asynq.TaskStateCompleted:
		return StateSuccess
	case asynq.TaskStateRetry:
		return StateRetry
	case asynq.TaskStateArchived:
		return StateFailure
	default:
		return StatePending
	}
}

func (q *Queue) Close() error {
	var errs []error
	if q.client != nil {
		errs = append(errs, q.client.Close())
	}
	if q.inspector != nil {
		errs = append(errs, q.inspector.Close())
	}
	return errors.Join(errs...)
}
