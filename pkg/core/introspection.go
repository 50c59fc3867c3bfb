package core

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes the store contents for observability.
type StoreState struct {
	Clients        int    `json:"clients"`
	AdminFeed      int    `json:"admin_feed"`
	AdminUnread    int    `json:"admin_unread"`
	RepositoryType string `json:"repository_type"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repoType := "unknown"
	if s.repo != nil {
		repoType = "repository"
		// Try to get component type if repository implements introspection.Component
		if comp, ok := s.repo.(introspection.Component); ok {
			repoType = comp.ComponentType()
		}
	}

	return StoreState{
		Clients:        len(s.clients),
		AdminFeed:      s.admin.Len(),
		AdminUnread:    s.admin.Unread(),
		RepositoryType: repoType,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

// ServiceState exposes the engine configuration for observability.
type ServiceState struct {
	EventBufferSize int        `json:"event_buffer_size"`
	LoginDelayMs    int64      `json:"login_delay_ms"`
	AdminConfigured bool       `json:"admin_configured"`
	Store           StoreState `json:"store"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	return ServiceState{
		EventBufferSize: s.eventBuf,
		LoginDelayMs:    s.loginDelay.Milliseconds(),
		AdminConfigured: s.admin.PasswordHash != "",
		Store:           s.store.State().(StoreState),
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
