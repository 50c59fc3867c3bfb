package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

// Watch reports changes made to the record file by other processes.
// Writes made through this repository are not reported. The channel is
// closed when ctx ends.
func (r *Repository) Watch(ctx context.Context) (<-chan core.Event, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// The parent directory is watched because atomic writes replace the file.
	if err := watcher.Add(filepath.Dir(r.Path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(r.Path), err)
	}

	events := make(chan core.Event, 16)
	w := &watchWorker{
		repo:      r,
		target:    filepath.Clean(r.Path),
		watcher:   watcher,
		events:    events,
		debouncer: newDebouncer(r.config.Debounce),
	}
	r.setWatcherActive(true)

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		if r.config.ErrorHandler != nil {
			r.config.ErrorHandler(fmt.Errorf("watcher: %w", err))
			return
		}
		r.config.Logger.Error("watcher stopped", "error", err)
	}))
	return events, nil
}

type watchWorker struct {
	repo      *Repository
	target    string
	watcher   *fsnotify.Watcher
	events    chan core.Event
	debouncer *debouncer
}

func (w *watchWorker) run(ctx context.Context) error {
	defer close(w.events)
	defer w.repo.setWatcherActive(false)
	defer w.watcher.Close()

	err := w.loop(ctx)
	// No callback may send after the channel is closed.
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *watchWorker) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handle(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.repo.config.Logger.Error("fsnotify error", "error", err)
			if w.repo.config.ErrorHandler != nil {
				w.repo.config.ErrorHandler(err)
			}
		}
	}
}

func (w *watchWorker) handle(ctx context.Context, event fsnotify.Event) {
	if strings.HasPrefix(filepath.Base(event.Name), TempFilePrefix) {
		return
	}
	if filepath.Clean(event.Name) != w.target {
		return
	}

	var typ core.EventType
	switch {
	case event.Has(fsnotify.Create):
		typ = core.EventCreate
	case event.Has(fsnotify.Write):
		typ = core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		typ = core.EventDelete
	default:
		return
	}
	w.repo.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	w.debouncer.add(core.Event{
		Type:      typ,
		ID:        filepath.Base(w.target),
		Timestamp: time.Now().Unix(),
	}, func(e core.Event) {
		if e.Type != core.EventDelete && w.repo.ownWrite() {
			return
		}
		w.repo.recordExternalChange()
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}
