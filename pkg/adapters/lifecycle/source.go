package lifecycle

import (
	"context"
	"sync"

	"github.com/aretw0/lifecycle"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

type recordSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
	once   sync.Once
}

// NewSource creates a lifecycle.Source that emits record set change events.
// core.Event already satisfies lifecycle.Event through its String method.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &recordSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *recordSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx ends or the upstream channel closes.
// Calling it more than once has no further effect.
func (s *recordSource) Start(ctx context.Context) error {
	s.once.Do(func() {
		lifecycle.Go(ctx, s.forward)
	})
	return nil
}

func (s *recordSource) forward(ctx context.Context) error {
	defer close(s.out)
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-s.events:
			if !ok {
				return nil
			}
			select {
			case s.out <- e:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
