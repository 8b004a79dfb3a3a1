// Package store persists benchmark runs and their measurements.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sortbench/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status       model.RunStatus `json:"status,omitempty"`
	StartedAfter time.Time       `json:"started_after,omitempty"`
	Limit        int             `json:"limit,omitempty"`
	Offset       int             `json:"offset,omitempty"`
}

// DefaultListLimit caps ListRuns when the filter sets no limit.
const DefaultListLimit = 100

func (f RunFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}

// Store defines the persistence interface for benchmark runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, sizes []int, workers int) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string) error
	FailRun(ctx context.Context, runID string, runErr error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Measurements, kept in insertion order per run.
	AddMeasurements(ctx context.Context, runID string, ms []model.Measurement) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

func newRun(id string, sizes []int, workers int) *model.Run {
	return &model.Run{
		ID:        id,
		Status:    model.RunStatusRunning,
		Sizes:     sizes,
		Workers:   workers,
		StartedAt: time.Now().UTC(),
	}
}

func marshalSizes(sizes []int) (string, error) {
	if sizes == nil {
		sizes = []int{}
	}
	b, err := json.Marshal(sizes)
	if err != nil {
		return "", eris.Wrap(err, "marshal sizes")
	}
	return string(b), nil
}

func unmarshalSizes(data []byte) ([]int, error) {
	var sizes []int
	if len(data) == 0 {
		return sizes, nil
	}
	if err := json.Unmarshal(data, &sizes); err != nil {
		return nil, eris.Wrap(err, "unmarshal sizes")
	}
	return sizes, nil
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
