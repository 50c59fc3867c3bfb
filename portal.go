package portal

import (
	"log/slog"
	"time"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/internal/platform"
	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/adapters/fs"
	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/adapters/s3"
	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

// Version of the library. Overridden at build time with
// -ldflags "-X github.com/AmineFethii/AMINE-FETHI-CRM-sub000.Version=...".
var Version = "dev"

// --- Types ---

// Client is a public alias for the engagement record.
type Client = core.ClientEngagement

// Update is a public alias for a sparse record change.
type Update = core.ClientUpdate

// Session is a public alias for the authenticated identity.
type Session = core.Session

// Service is a public alias for the engagement engine.
type Service = core.Service

// --- Configuration ---

// Option defines a functional option for configuring the portal.
type Option = platform.Option

// WithAdapter selects the storage adapter by name ("fs", "memory", "sqlite", "postgres", "s3").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithMetrics sets the metrics sink.
func WithMetrics(m core.Metrics) Option {
	return platform.WithMetrics(m)
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithIDGenerator overrides how notification and client ids are minted.
func WithIDGenerator(fn func() string) Option {
	return platform.WithIDGenerator(fn)
}

// WithLoginDelay sets the artificial delay of every login attempt.
func WithLoginDelay(d time.Duration) Option {
	return platform.WithLoginDelay(d)
}

// WithAdminCredentials registers the admin login from a bcrypt hash.
func WithAdminCredentials(email, hash string) Option {
	return platform.WithAdminCredentials(email, hash)
}

// WithReadOnly rejects every write with core.ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithMustExist ensures the record file must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithEventBuffer allows specifying the size of the watch channel buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithSerializer registers a record file format for an extension.
func WithSerializer(ext string, s fs.Serializer) Option {
	return platform.WithSerializer(ext, s)
}

// WithS3Client supplies the object client of the s3 adapter.
func WithS3Client(api s3.ObjectAPI) Option {
	return platform.WithS3Client(api)
}

// WithWatcherErrorHandler receives errors of the file watcher.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates a portal Service with its record set loaded.
func New(uri string, opts ...Option) (*core.Service, error) {
	return platform.New(uri, opts...)
}

// Init initializes a repository explicitly.
func Init(uri string, opts ...Option) (core.Repository, error) {
	return platform.Init(uri, opts...)
}

// FindRecordFile looks upwards from startDir for the named record file.
func FindRecordFile(startDir, name string) (string, error) {
	return platform.FindRecordFile(startDir, name)
}
