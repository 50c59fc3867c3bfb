package core

import "context"

// Repository defines the contract for loading and persisting the record set.
// Adhering to this interface keeps the engine independent of the underlying
// storage mechanism (browser-like memory, a file, SQL, object storage).
type Repository interface {
	// Initialize ensures the underlying storage is ready (e.g., create directories, schema migration).
	Initialize(ctx context.Context) error

	// Load returns the full current record set. An empty store yields an empty Snapshot.
	Load(ctx context.Context) (Snapshot, error)

	// Persist replaces the stored record set with snap.
	// A Load that follows a successful Persist must observe it.
	Persist(ctx context.Context, snap Snapshot) error
}

// Watchable defines an interface for repositories that can report changes
// made to the stored record set by someone else.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}
