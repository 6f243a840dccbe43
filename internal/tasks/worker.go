package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"webstack/internal/obs"
)

type WorkerConfig struct {
	Concurrency int
	Queue       string
	Logger      zerolog.Logger
	Metrics     *obs.Metrics
}

// NewServer builds the asynq server and the handler mux it consumes with.
// The caller starts and stops the server.
func NewServer(redisURL string, cfg WorkerConfig) (*asynq.Server, *asynq.ServeMux, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse broker url: %w", err)
	}
	queue := cfg.Queue
	if queue == "" {
		queue = "default"
	}
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{queue: 1},
		Logger:      asynqLogger{logger: cfg.Logger.With().Str("component", "asynq").Logger()},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			cfg.Logger.Error().Err(err).Str("type", task.Type()).Msg("task failed")
		}),
	})
	return srv, NewServeMux(cfg.Metrics), nil
}

func NewServeMux(metrics *obs.Metrics) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAdd, HandleAdd(metrics))
	return mux
}

// HandleAdd computes the sum and writes it back keyed by the task id.
// Undecodable payloads skip retry; they would fail the same way again.
func HandleAdd(metrics *obs.Metrics) asynq.HandlerFunc {
	return handleAdd(metrics, func(t *asynq.Task) io.Writer { return t.ResultWriter() })
}

// handleAdd takes the result sink separately; asynq only attaches a
// ResultWriter to tasks it dequeued itself.
func handleAdd(metrics *obs.Metrics, resultFor func(*asynq.Task) io.Writer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) (err error) {
		start := time.Now()
		defer func() {
			metrics.ObserveTaskProcessed(t.Type(), err, time.Since(start))
		}()

		out, err := ProcessAdd(t.Payload())
		if err != nil {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		if _, err := resultFor(t).Write(out); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		return nil
	}
}

// asynqLogger routes asynq's internal logging through zerolog.
type asynqLogger struct {
	logger zerolog.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.logger.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.logger.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.logger.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.logger.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.logger.Fatal().Msg(fmt.Sprint(args...)) }
