// Package storage persists workflow run snapshots. The RunStore
// interface keeps the workflow core free of global process state: the
// surrounding service injects whichever backend it runs on.
package storage

import (
	"context"

	"github.com/c360studio/rfpflow/workflow"
)

// RunStore stores finished (and errored) run snapshots keyed by run ID.
type RunStore interface {
	// Put inserts or replaces the snapshot for state.RunID.
	Put(ctx context.Context, state *workflow.State) error

	// Get returns the snapshot for the run ID, or ErrNotFound.
	Get(ctx context.Context, runID string) (*workflow.State, error)

	// Delete removes the snapshot. Deleting a missing run is not an error.
	Delete(ctx context.Context, runID string) error

	// List returns all stored run IDs.
	List(ctx context.Context) ([]string, error)
}
