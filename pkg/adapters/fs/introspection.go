package fs

import (
	"path/filepath"
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path               string     `json:"path"`
	Format             string     `json:"format"`
	ReadOnly           bool       `json:"read_only"`
	MustExist          bool       `json:"must_exist"`
	WatcherActive      bool       `json:"watcher_active"`
	LastExternalChange *time.Time `json:"last_external_change,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RepositoryState{
		Path:               r.Path,
		Format:             filepath.Ext(r.Path),
		ReadOnly:           r.config.ReadOnly,
		MustExist:          r.config.MustExist,
		WatcherActive:      r.watcherActive,
		LastExternalChange: r.lastExternal,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "fs-repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)

func (r *Repository) setWatcherActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watcherActive = active
}

func (r *Repository) recordExternalChange() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.lastExternal = &now
}
