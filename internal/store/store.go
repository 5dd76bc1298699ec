// Package store persists the audit history of scans. It is never consulted
// to decide which posts to send.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/launchwatch/internal/model"
)

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = eris.New("store: run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for scan history.
type Store interface {
	CreateRun(ctx context.Context, queries []string) (*model.Run, error)
	SetRunJob(ctx context.Context, runID, jobID string) error
	CompleteRun(ctx context.Context, runID string, result *model.RunResult) error
	FailRun(ctx context.Context, runID string, result *model.RunResult, errMsg string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100
