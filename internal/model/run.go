package model

import "time"

// RunStatus represents the state of a recorded benchmark run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one persisted invocation of the benchmark sweep.
type Run struct {
	ID           string        `json:"id"`
	Status       RunStatus     `json:"status"`
	Sizes        []int         `json:"sizes"`
	Workers      int           `json:"workers"`
	Error        string        `json:"error,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
	Measurements []Measurement `json:"measurements,omitempty"`
}

// Table returns the run's measurements as a results table.
func (r *Run) Table() ResultTable {
	return BuildTable(r.Measurements)
}
