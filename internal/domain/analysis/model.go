package analysis

import (
	"time"

	"sovlens/internal/domain/sov"
)

// Status tracks the lifecycle of one analysis run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Request describes one analysis run as submitted by a caller.
type Request struct {
	Keywords   []string `json:"keywords"`
	Platforms  []string `json:"platforms"`
	MaxResults int      `json:"max_results"`
}

// Run is the persistent record of one analysis run, including the manifest
// of items skipped during aggregation.
type Run struct {
	ID          string        `json:"id"`
	Status      Status        `json:"status"`
	Keywords    []string      `json:"keywords"`
	Platforms   []string      `json:"platforms"`
	ItemCount   int           `json:"item_count"`
	Error       string        `json:"error,omitempty"`
	Warnings    []sov.Warning `json:"warnings,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// Filter defines criteria for listing runs.
type Filter struct {
	Status Status
	Limit  int
}
