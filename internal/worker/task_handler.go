package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"pinkilang/internal/accounting"
	"pinkilang/internal/models"
	"pinkilang/internal/service"
)

// TaskHandler runs ledger jobs with the same services the API uses and
// records their outcome in the job store when the task carries a job id.
type TaskHandler struct {
	generator   *service.JournalGenerator
	adjustments *service.AdjustmentService
	jobs        *service.JobStore
	location    *time.Location
	logger      *logrus.Logger
}

func NewTaskHandler(generator *service.JournalGenerator, adjustments *service.AdjustmentService, jobs *service.JobStore, location *time.Location, logger *logrus.Logger) *TaskHandler {
	if location == nil {
		location = time.UTC
	}
	return &TaskHandler{
		generator:   generator,
		adjustments: adjustments,
		jobs:        jobs,
		location:    location,
		logger:      logger,
	}
}

func (h *TaskHandler) HandleJournalGenerate(ctx context.Context, task *asynq.Task) error {
	var payload JournalGeneratePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	log := h.logger.WithFields(logrus.Fields{"task": task.Type(), "job_id": payload.JobID, "source": payload.Source})
	log.Info("Starting journal generation")
	h.markRunning(ctx, payload.JobID, task.Type())

	report, err := h.generator.Generate(ctx, models.TransactionType(payload.Source), payload.Actor)
	if err != nil {
		return h.fail(ctx, log, payload.JobID, task.Type(), err)
	}
	h.complete(ctx, log, payload.JobID, task.Type(), report)
	return nil
}

func (h *TaskHandler) HandleDepreciationSweep(ctx context.Context, task *asynq.Task) error {
	var payload DepreciationSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	log := h.logger.WithFields(logrus.Fields{"task": task.Type(), "job_id": payload.JobID, "as_of": payload.AsOf})
	h.markRunning(ctx, payload.JobID, task.Type())

	asOf, err := service.ParseDate(payload.AsOf, time.Now().In(h.location))
	if err != nil {
		return h.fail(ctx, log, payload.JobID, task.Type(), err)
	}
	log.Info("Starting depreciation sweep")

	report, err := h.adjustments.Sweep(ctx, asOf, payload.Actor)
	if err != nil {
		return h.fail(ctx, log, payload.JobID, task.Type(), err)
	}
	h.complete(ctx, log, payload.JobID, task.Type(), report)
	return nil
}

func (h *TaskHandler) markRunning(ctx context.Context, jobID, taskType string) {
	if h.jobs == nil || jobID == "" {
		return
	}
	if err := h.jobs.MarkRunning(ctx, jobID, taskType); err != nil {
		h.logger.WithError(err).WithField("job_id", jobID).Warn("Failed to update job status")
	}
}

func (h *TaskHandler) complete(ctx context.Context, log *logrus.Entry, jobID, taskType string, result interface{}) {
	log.Info("Task completed")
	if h.jobs == nil || jobID == "" {
		return
	}
	if err := h.jobs.Complete(ctx, jobID, taskType, result); err != nil {
		log.WithError(err).Warn("Failed to store job result")
	}
}

// fail records the failure. Validation errors are never retried.
func (h *TaskHandler) fail(ctx context.Context, log *logrus.Entry, jobID, taskType string, err error) error {
	log.WithError(err).Error("Task failed")
	if h.jobs != nil && jobID != "" {
		if serr := h.jobs.Fail(ctx, jobID, taskType, err); serr != nil {
			log.WithError(serr).Warn("Failed to store job result")
		}
	}
	if accounting.IsValidationError(err) {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return err
}
