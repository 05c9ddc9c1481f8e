package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"pinkilang/internal/models"
	"pinkilang/internal/service"
)

// Dispatcher enqueues ledger jobs on behalf of the API and marks them
// queued in the job store so clients can poll /jobs/:id.
type Dispatcher struct {
	client *asynq.Client
	jobs   *service.JobStore
}

func NewDispatcher(client *asynq.Client, jobs *service.JobStore) *Dispatcher {
	return &Dispatcher{client: client, jobs: jobs}
}

func (d *Dispatcher) EnqueueJournalGeneration(ctx context.Context, source models.TransactionType, actor string) (string, error) {
	jobID := uuid.NewString()
	task, err := NewJournalGenerateTask(JournalGeneratePayload{JobID: jobID, Source: string(source), Actor: actor})
	if err != nil {
		return "", err
	}
	return jobID, d.enqueue(ctx, jobID, task, asynq.Queue(QueueCritical), asynq.MaxRetry(5))
}

func (d *Dispatcher) EnqueueDepreciationSweep(ctx context.Context, asOf time.Time, actor string) (string, error) {
	jobID := uuid.NewString()
	payload := DepreciationSweepPayload{JobID: jobID, Actor: actor}
	if !asOf.IsZero() {
		payload.AsOf = asOf.Format("2006-01-02")
	}
	task, err := NewDepreciationSweepTask(payload)
	if err != nil {
		return "", err
	}
	return jobID, d.enqueue(ctx, jobID, task, asynq.Queue(QueueLow), asynq.MaxRetry(3))
}

func (d *Dispatcher) enqueue(ctx context.Context, jobID string, task *asynq.Task, opts ...asynq.Option) error {
	if err := d.jobs.MarkQueued(ctx, jobID, task.Type()); err != nil {
		return err
	}
	opts = append(opts, asynq.TaskID(jobID), asynq.Timeout(10*time.Minute))
	if _, err := d.client.EnqueueContext(ctx, task, opts...); err != nil {
		_ = d.jobs.Fail(ctx, jobID, task.Type(), err)
		return fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}
	return nil
}
