package core

import (
	"context"
	"fmt"
	"sync"
)

// Store is the in-memory collection of client records and the admin feed.
// It is loaded from a Repository and hands the full record set back to it
// after every committed change.
type Store struct {
	mu      sync.RWMutex
	repo    Repository
	clients map[string]ClientEngagement
	order   []string
	admin   Inbox
}

// NewStore creates an empty store backed by repo. Call Load to fill it.
func NewStore(repo Repository) *Store {
	return &Store{
		repo:    repo,
		clients: make(map[string]ClientEngagement),
	}
}

// Load replaces the in-memory state with the repository's record set.
func (s *Store) Load(ctx context.Context) error {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load record set: %w", err)
	}

	clients := make(map[string]ClientEngagement, len(snap.Clients))
	order := make([]string, 0, len(snap.Clients))
	for _, c := range snap.Clients {
		if c.ID == "" {
			continue
		}
		if _, dup := clients[c.ID]; !dup {
			order = append(order, c.ID)
		}
		clients[c.ID] = c.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = clients
	s.order = order
	s.admin = snap.AdminFeed.Clone()
	return nil
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (ClientEngagement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return ClientEngagement{}, false
	}
	return c.Clone(), true
}

// FindByEmail looks a record up by its login email, ignoring case.
func (s *Store) FindByEmail(email string) (ClientEngagement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.idByEmail(email)
	if !ok {
		return ClientEngagement{}, false
	}
	return s.clients[id].Clone(), true
}

func (s *Store) idByEmail(email string) (string, bool) {
	want := normalizeEmail(email)
	if want == "" {
		return "", false
	}
	for _, id := range s.order {
		if normalizeEmail(s.clients[id].Email) == want {
			return id, true
		}
	}
	return "", false
}

// List returns copies of all records in insertion order.
func (s *Store) List() []ClientEngagement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ClientEngagement, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.clients[id].Clone())
	}
	return out
}

// AdminFeed returns a copy of the admin notification feed.
func (s *Store) AdminFeed() Inbox {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin.Clone()
}

// Snapshot returns a copy of the whole record set.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(nil)
}

func (s *Store) snapshot(tx *Tx) Snapshot {
	snap := Snapshot{Clients: make([]ClientEngagement, 0, len(s.order))}
	for _, id := range s.order {
		c := s.clients[id]
		if tx != nil {
			if staged, ok := tx.staged[id]; ok {
				c = staged
			}
		}
		snap.Clients = append(snap.Clients, c.Clone())
	}
	snap.AdminFeed = s.admin.Clone()
	if tx != nil {
		for _, id := range tx.added {
			snap.Clients = append(snap.Clients, tx.staged[id].Clone())
		}
		if tx.admin != nil {
			snap.AdminFeed = tx.admin.Clone()
		}
	}
	return snap
}

// WithTransaction runs fn against a staged view of the store. When fn returns nil
// the resulting record set is persisted and only then made visible; otherwise
// nothing changes.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{store: s, staged: make(map[string]ClientEngagement)}
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.dirty() {
		return nil
	}

	if err := s.repo.Persist(ctx, s.snapshot(tx)); err != nil {
		return fmt.Errorf("persist record set: %w", err)
	}

	for id, c := range tx.staged {
		s.clients[id] = c
	}
	s.order = append(s.order, tx.added...)
	if tx.admin != nil {
		s.admin = *tx.admin
	}
	return nil
}

// Tx is a unit of work over the store. It is only valid inside WithTransaction.
type Tx struct {
	store  *Store
	staged map[string]ClientEngagement
	added  []string
	admin  *Inbox
}

// Client returns the record, preferring the staged version.
func (tx *Tx) Client(id string) (ClientEngagement, bool) {
	if c, ok := tx.staged[id]; ok {
		return c.Clone(), true
	}
	c, ok := tx.store.clients[id]
	if !ok {
		return ClientEngagement{}, false
	}
	return c.Clone(), true
}

// ClientByEmail looks a record up by email among stored and staged records.
func (tx *Tx) ClientByEmail(email string) (ClientEngagement, bool) {
	if id, ok := tx.store.idByEmail(email); ok {
		return tx.Client(id)
	}
	want := normalizeEmail(email)
	for _, id := range tx.added {
		if normalizeEmail(tx.staged[id].Email) == want {
			return tx.staged[id].Clone(), true
		}
	}
	return ClientEngagement{}, false
}

// Put stages a record. Unknown ids are appended to the collection.
func (tx *Tx) Put(c ClientEngagement) {
	_, known := tx.store.clients[c.ID]
	_, staged := tx.staged[c.ID]
	if !known && !staged {
		tx.added = append(tx.added, c.ID)
	}
	tx.staged[c.ID] = c.Clone()
}

// AdminFeed returns the admin feed, preferring the staged version.
func (tx *Tx) AdminFeed() Inbox {
	if tx.admin != nil {
		return tx.admin.Clone()
	}
	return tx.store.admin.Clone()
}

// PutAdminFeed stages a new admin feed.
func (tx *Tx) PutAdminFeed(in Inbox) {
	in = in.Clone()
	tx.admin = &in
}

func (tx *Tx) dirty() bool {
	return len(tx.staged) > 0 || tx.admin != nil
}
