// Package job runs background work on Asynq, a Redis-backed task queue.
//
// Services enqueue tasks through JobService and return immediately; the
// worker side processes them with retries. The only task today fans event
// changes out to Redis pub/sub subscribers.
package job

import (
	"context"
	"fmt"

	"github.com/deppfellow/event-scheduler/internal/config"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type JobService struct {
	// Client enqueues tasks.
	Client *asynq.Client

	server    *asynq.Server
	publisher *Publisher
	logger    *zerolog.Logger
}

// NewJobService builds the Asynq client and worker server against the
// configured Redis, and a publisher on redisClient for task handlers.
func NewJobService(logger *zerolog.Logger, cfg *config.Config, redisClient *redis.Client) *JobService {
	redisAddr := cfg.Redis.Address

	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr: redisAddr,
	})

	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: cfg.Jobs.Concurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger:   newAsynqLogger(logger),
			LogLevel: asynq.WarnLevel,
		},
	)

	return &JobService{
		Client:    client,
		server:    server,
		publisher: NewPublisher(redisClient),
		logger:    logger,
	}
}

// Start registers the task handlers and starts the workers in the background.
func (j *JobService) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskEventChanged, j.handleEventChangedTask)

	j.logger.Info().Msg("starting background job server")

	return j.server.Start(mux)
}

// Stop waits for running tasks and closes the enqueue connection.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}

// EnqueueEventChanged queues a notification about an event.
func (j *JobService) EnqueueEventChanged(ctx context.Context, payload EventChangedPayload) error {
	task, err := NewEventChangedTask(payload)
	if err != nil {
		return err
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}

	j.logger.Debug().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Str("event_uri", payload.EventURI).
		Msg("enqueued event change notification")

	return nil
}

// asynqLogger routes Asynq's internal logs through zerolog.
type asynqLogger struct {
	log zerolog.Logger
}

func newAsynqLogger(logger *zerolog.Logger) *asynqLogger {
	return &asynqLogger{log: logger.With().Str("component", "asynq").Logger()}
}

func sprint(args []interface{}) string {
	return fmt.Sprint(args...)
}

func (l *asynqLogger) Debug(args ...interface{}) { l.log.Debug().Msg(sprint(args)) }
func (l *asynqLogger) Info(args ...interface{})  { l.log.Info().Msg(sprint(args)) }
func (l *asynqLogger) Warn(args ...interface{})  { l.log.Warn().Msg(sprint(args)) }
func (l *asynqLogger) Error(args ...interface{}) { l.log.Error().Msg(sprint(args)) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.log.Fatal().Msg(sprint(args)) }
