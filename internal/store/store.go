// Package store persists research runs so they can be listed and inspected
// after the fact.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/idea-research/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = eris.New("store: run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	State  model.PipelineState `json:"state,omitempty"`
	Limit  int                 `json:"limit,omitempty"`
	Offset int                 `json:"offset,omitempty"`
}

// Store defines the persistence interface for research runs.
type Store interface {
	CreateRun(ctx context.Context, idea model.Idea) (*model.Run, error)
	UpdateRunState(ctx context.Context, runID string, state model.PipelineState, progress int) error
	CompleteRun(ctx context.Context, runID string, state model.PipelineState, progress int, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

func (f RunFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}
