package fs

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

// Repository implements core.Repository with a single file holding the whole
// record set. The format follows the file extension.
type Repository struct {
	Path       string
	config     Config
	serializer Serializer

	mu            sync.RWMutex
	lastWritten   [sha256.Size]byte
	watcherActive bool
	lastExternal  *time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	MustExist bool // fail Initialize when the record file is missing
	ReadOnly  bool
	Logger    *slog.Logger
	// ErrorHandler receives watcher failures. When nil they are logged.
	ErrorHandler func(error)
	// Serializers overrides the extension -> format table.
	Serializers map[string]Serializer
	// Debounce collapses bursts of file events. Zero means 50ms.
	Debounce time.Duration
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Serializers == nil {
		config.Serializers = DefaultSerializers()
	}
	if config.Debounce <= 0 {
		config.Debounce = 50 * time.Millisecond
	}
	return &Repository{
		Path:       config.Path,
		config:     config,
		serializer: config.Serializers[strings.ToLower(filepath.Ext(config.Path))],
	}
}

// Initialize checks the target path and creates its directory.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.serializer == nil {
		return fmt.Errorf("unsupported record file format: %q", filepath.Ext(r.Path))
	}

	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("record file does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("record path is a directory: %s", r.Path)
		}
		return nil
	}

	if r.config.ReadOnly {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(r.Path), 0755); err != nil {
		return fmt.Errorf("failed to create record directory: %w", err)
	}
	return nil
}

// Load reads the record set. A missing file is an empty record set.
func (r *Repository) Load(ctx context.Context) (core.Snapshot, error) {
	if r.serializer == nil {
		return core.Snapshot{}, fmt.Errorf("unsupported record file format: %q", filepath.Ext(r.Path))
	}

	data, err := os.ReadFile(r.Path)
	if errors.Is(err, os.ErrNotExist) {
		r.config.Logger.Debug("record file missing, starting empty", "path", r.Path)
		return core.Snapshot{}, nil
	}
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("read %s: %w", r.Path, err)
	}

	snap, err := r.serializer.Parse(bytes.NewReader(data))
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("parse %s: %w", r.Path, err)
	}
	r.config.Logger.Debug("record set loaded", "path", r.Path, "clients", len(snap.Clients))
	return snap, nil
}

// Persist writes the record set atomically.
func (r *Repository) Persist(ctx context.Context, snap core.Snapshot) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if r.serializer == nil {
		return fmt.Errorf("unsupported record file format: %q", filepath.Ext(r.Path))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := r.serializer.Serialize(snap)
	if err != nil {
		return fmt.Errorf("serialize record set: %w", err)
	}

	// Recorded before the rename so the watcher can recognise the event as ours.
	r.mu.Lock()
	prev := r.lastWritten
	r.lastWritten = sha256.Sum256(data)
	r.mu.Unlock()

	if err := writeFileAtomic(r.Path, data, 0644); err != nil {
		r.mu.Lock()
		r.lastWritten = prev
		r.mu.Unlock()
		return err
	}
	r.config.Logger.Debug("record set persisted", "path", r.Path, "clients", len(snap.Clients), "bytes", len(data))
	return nil
}

// ownWrite reports whether the file currently holds the bytes this process wrote last.
func (r *Repository) ownWrite() bool {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return false
	}
	sum := sha256.Sum256(data)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sum == r.lastWritten
}

var _ core.Repository = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
