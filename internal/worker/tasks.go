package worker

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task types served by the worker.
const (
	TypeJournalGenerate   = "journal:generate"
	TypeDepreciationSweep = "depreciation:sweep"
)

// Queue names, weighted in NewServer.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// JournalGeneratePayload asks for a generate-missing pass. An empty source
// means every business transaction table.
type JournalGeneratePayload struct {
	JobID  string `json:"job_id,omitempty"`
	Source string `json:"source,omitempty"`
	Actor  string `json:"actor"`
}

// DepreciationSweepPayload asks for an automatic depreciation sweep. An
// empty AsOf means the day the task runs.
type DepreciationSweepPayload struct {
	JobID string `json:"job_id,omitempty"`
	AsOf  string `json:"as_of,omitempty"`
	Actor string `json:"actor"`
}

func NewJournalGenerateTask(p JournalGeneratePayload, opts ...asynq.Option) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", TypeJournalGenerate, err)
	}
	return asynq.NewTask(TypeJournalGenerate, data, opts...), nil
}

func NewDepreciationSweepTask(p DepreciationSweepPayload, opts ...asynq.Option) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", TypeDepreciationSweep, err)
	}
	return asynq.NewTask(TypeDepreciationSweep, data, opts...), nil
}
