// Package store persists run history: one row per pipeline invocation
// with its final status and enrichment coverage statistics. Two
// backends exist; sqlite is the default for single-operator use,
// postgres serves shared deployments.
package store

import (
	"context"

	"github.com/lexikit/wordforge/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Level  string          `json:"level,omitempty"`
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store is the run-history persistence interface.
type Store interface {
	CreateRun(ctx context.Context, id, level string, dom model.Domain) (*model.Run, error)
	FinishRun(ctx context.Context, runID string, status model.RunStatus, stats *model.RunStats) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
