package worker

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"pinkilang/internal/config"
)

// NewScheduler registers the periodic depreciation sweep. The sweep is
// idempotent per asset and month, so a duplicate run is harmless.
func NewScheduler(cfg *config.Config) (*asynq.Scheduler, error) {
	loc, err := time.LoadLocation(cfg.SchedulerLocation)
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduler location %q: %w", cfg.SchedulerLocation, err)
	}

	scheduler := asynq.NewScheduler(RedisOpt(cfg), &asynq.SchedulerOpts{Location: loc})

	task, err := NewDepreciationSweepTask(DepreciationSweepPayload{Actor: cfg.DepreciationActor})
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.Register(cfg.DepreciationCron, task, asynq.Queue(QueueLow), asynq.MaxRetry(3)); err != nil {
		return nil, fmt.Errorf("failed to register depreciation sweep: %w", err)
	}
	return scheduler, nil
}
