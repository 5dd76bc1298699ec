package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/launchwatch/internal/model"
)

// NopStore discards history. Used when store.driver is "none".
type NopStore struct{}

func (NopStore) CreateRun(_ context.Context, queries []string) (*model.Run, error) {
	now := time.Now().UTC()
	return &model.Run{
		ID:        uuid.New().String(),
		Status:    model.RunStatusRunning,
		Queries:   queries,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (NopStore) SetRunJob(context.Context, string, string) error { return nil }

func (NopStore) CompleteRun(context.Context, string, *model.RunResult) error { return nil }

func (NopStore) FailRun(context.Context, string, *model.RunResult, string) error { return nil }

func (NopStore) GetRun(context.Context, string) (*model.Run, error) {
	return nil, ErrNotFound
}

func (NopStore) ListRuns(context.Context, RunFilter) ([]model.Run, error) { return nil, nil }

func (NopStore) Migrate(context.Context) error { return nil }

func (NopStore) Close() error { return nil }
