package worker

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"pinkilang/internal/config"
)

// RedisOpt is the asynq connection for the configured Redis.
func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.AsynqRedisAddr,
		Password: cfg.AsynqRedisPassword,
		DB:       cfg.AsynqRedisDB,
	}
}

// NewServer creates the asynq server with the weighted ledger queues.
func NewServer(cfg *config.Config, logger *logrus.Logger) *asynq.Server {
	return asynq.NewServer(
		RedisOpt(cfg),
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.WithError(err).WithField("task", task.Type()).Error("Error processing task")
			}),
		},
	)
}

func RegisterHandlers(mux *asynq.ServeMux, h *TaskHandler) {
	mux.HandleFunc(TypeJournalGenerate, h.HandleJournalGenerate)
	mux.HandleFunc(TypeDepreciationSweep, h.HandleDepreciationSweep)
}
