// Package store persists pipeline run documents. The default backend is a
// flat-file JSON directory: one document per run, greppable and diffable.
// Anything smarter only needs another Store implementation.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/provdir/internal/model"
)

// ErrNotFound reports a run id with no stored document.
var ErrNotFound = eris.New("store: run not found")

// RunFilter narrows run listings.
type RunFilter struct {
	// Since keeps runs started at or after this instant. Zero keeps all.
	Since time.Time
	// Limit keeps at most this many runs, newest first. Zero keeps all.
	Limit int
}

// Store defines the persistence interface for pipeline runs.
type Store interface {
	SaveRun(ctx context.Context, doc *model.RunDocument) error
	GetRun(ctx context.Context, runID string) (*model.RunDocument, error)
	LatestRun(ctx context.Context) (*model.RunDocument, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.RunSummary, error)
	DeleteRun(ctx context.Context, runID string) error
	Close() error
}
