// Package store persists pipeline run history in SQLite: one row per run,
// one row per stage, so `twb-cli runs` can show what each run did and where
// failures happened.
package store

import (
	"context"
	"time"
)

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded pipeline execution.
type Run struct {
	ID          string
	Status      RunStatus
	Locations   int
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// Stage is one recorded pipeline stage within a run.
type Stage struct {
	RunID    string
	Name     string
	Status   string
	Detail   string
	Duration time.Duration
}

// Store records pipeline runs and their stages.
type Store interface {
	CreateRun(ctx context.Context) (*Run, error)
	CompleteRun(ctx context.Context, runID string, status RunStatus, locations int, runErr string) error
	RecordStage(ctx context.Context, stage Stage) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	ListStages(ctx context.Context, runID string) ([]Stage, error)
	Close() error
}
