package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinkilang/internal/models"
	"pinkilang/internal/repository"
	"pinkilang/internal/service"
)

type fixture struct {
	store   *repository.MemoryStore
	jobs    *service.JobStore
	handler *TaskHandler
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := repository.NewMemoryStore("INTEGRATED")
	jobs := service.NewJobStore(client, time.Hour)
	h := NewTaskHandler(
		service.NewJournalGenerator(store, nil, logger),
		service.NewAdjustmentService(store, nil, nil, logger),
		jobs, time.UTC, logger,
	)
	return fixture{store: store, jobs: jobs, handler: h}
}

func TestHandleJournalGenerate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.InsertRawTransaction(ctx, &models.RawTransaction{
		Type:   models.TxCapitalContribution,
		Date:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount: decimal.NewFromInt(1000000),
	}))

	task, err := NewJournalGenerateTask(JournalGeneratePayload{JobID: "job-1", Actor: "worker"})
	require.NoError(t, err)
	require.NoError(t, f.handler.HandleJournalGenerate(ctx, task))

	job, err := f.jobs.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, service.JobCompleted, job.Status)

	var report models.GenerationReport
	require.NoError(t, json.Unmarshal(job.Result, &report))
	assert.Equal(t, 1, report.NewlyJournaled)

	exists, err := f.store.JournalExists(ctx, "1", models.TxCapitalContribution)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestHandleJournalGenerate_BadSourceIsNotRetried(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	task, err := NewJournalGenerateTask(JournalGeneratePayload{JobID: "job-2", Source: "ADJUSTMENT_MANUAL", Actor: "worker"})
	require.NoError(t, err)
	err = f.handler.HandleJournalGenerate(ctx, task)
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	job, err := f.jobs.Get(ctx, "job-2")
	require.NoError(t, err)
	assert.Equal(t, service.JobFailed, job.Status)

	err = f.handler.HandleJournalGenerate(ctx, asynq.NewTask(TypeJournalGenerate, []byte("{")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleDepreciationSweep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.CreateFixedAsset(ctx, &models.FixedAsset{
		Name:             "Etalase",
		AcquisitionDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		AcquisitionValue: decimal.NewFromInt(1200000),
		ResidualValue:    decimal.Zero,
		UsefulLifeYears:  1,
	}))

	task, err := NewDepreciationSweepTask(DepreciationSweepPayload{JobID: "job-3", AsOf: "2024-03-01", Actor: "scheduler"})
	require.NoError(t, err)
	require.NoError(t, f.handler.HandleDepreciationSweep(ctx, task))

	job, err := f.jobs.Get(ctx, "job-3")
	require.NoError(t, err)
	var report models.SweepReport
	require.NoError(t, json.Unmarshal(job.Result, &report))
	assert.Equal(t, 1, report.Depreciated)
	assert.True(t, decimal.NewFromInt(200000).Equal(report.Total))

	// Scheduled runs carry no job id and are not tracked.
	scheduled, err := NewDepreciationSweepTask(DepreciationSweepPayload{AsOf: "2024-03-01", Actor: "scheduler"})
	require.NoError(t, err)
	require.NoError(t, f.handler.HandleDepreciationSweep(ctx, scheduled))
}
