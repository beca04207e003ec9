package domain

import "context"

// Gateway persists the snapshot as a single unit.
type Gateway interface {
	// Load returns the stored snapshot, or nil when nothing has been saved.
	Load(ctx context.Context) (*Snapshot, error)

	// Save replaces the stored snapshot. Implementations must not leave a
	// partially written snapshot readable by a later Load.
	Save(ctx context.Context, snapshot *Snapshot) error

	// Clear removes the stored snapshot. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
