package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// ErrJobNotFound is returned for unknown or expired job ids.
var ErrJobNotFound = errors.New("job not found")

// JobResult is the state of a background job as seen by API clients.
type JobResult struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Status    JobStatus       `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// JobStore keeps job results in Redis for a limited time.
type JobStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewJobStore(client *redis.Client, ttl time.Duration) *JobStore {
	return &JobStore{redis: client, ttl: ttl}
}

func jobKey(id string) string {
	return fmt.Sprintf("job:result:%s", id)
}

func (s *JobStore) save(ctx context.Context, job JobResult) error {
	job.UpdatedAt = time.Now()
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job result: %w", err)
	}
	if err := s.redis.Set(ctx, jobKey(job.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store job result: %w", err)
	}
	return nil
}

func (s *JobStore) MarkQueued(ctx context.Context, id, jobType string) error {
	return s.save(ctx, JobResult{ID: id, Type: jobType, Status: JobQueued})
}

func (s *JobStore) MarkRunning(ctx context.Context, id, jobType string) error {
	return s.save(ctx, JobResult{ID: id, Type: jobType, Status: JobRunning})
}

// Complete stores the job's result payload.
func (s *JobStore) Complete(ctx context.Context, id, jobType string, result interface{}) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode job payload: %w", err)
	}
	return s.save(ctx, JobResult{ID: id, Type: jobType, Status: JobCompleted, Result: data})
}

func (s *JobStore) Fail(ctx context.Context, id, jobType string, jobErr error) error {
	return s.save(ctx, JobResult{ID: id, Type: jobType, Status: JobFailed, Error: jobErr.Error()})
}

func (s *JobStore) Get(ctx context.Context, id string) (*JobResult, error) {
	data, err := s.redis.Get(ctx, jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read job result: %w", err)
	}
	var job JobResult
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job result: %w", err)
	}
	return &job, nil
}
