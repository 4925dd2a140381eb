package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/orglink/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = eris.New("store: not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for linkage runs. Link results are
// written one record at a time and double as the resume checkpoint.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, input string, mode model.Mode, total int) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus, errMsg string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Results
	SaveResult(ctx context.Context, res model.LinkResult) error
	ListResults(ctx context.Context, runID string) ([]model.LinkResult, error)
	RunStats(ctx context.Context, runID string) (model.RunStats, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

func listLimit(filter RunFilter) int {
	if filter.Limit <= 0 {
		return defaultListLimit
	}
	return filter.Limit
}
