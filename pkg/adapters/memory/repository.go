// Package memory keeps the record set in process memory. It is the default
// for tests and one-off CLI runs that must not touch disk.
package memory

import (
	"context"
	"sync"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

// Repository is an in-memory core.Repository.
type Repository struct {
	mu       sync.Mutex
	snap     core.Snapshot
	persists int
}

// NewRepository creates a repository holding a copy of seed, if given.
func NewRepository(seed ...core.Snapshot) *Repository {
	r := &Repository{}
	if len(seed) > 0 {
		r.snap = seed[0].Clone()
	}
	return r
}

func (r *Repository) Initialize(ctx context.Context) error { return nil }

func (r *Repository) Load(ctx context.Context) (core.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap.Clone(), nil
}

func (r *Repository) Persist(ctx context.Context, snap core.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = snap.Clone()
	r.persists++
	return nil
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return map[string]int{
		"clients":  len(r.snap.Clients),
		"persists": r.persists,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string { return "memory-repository" }
