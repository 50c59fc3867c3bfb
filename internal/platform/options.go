package platform

import (
	"log/slog"
	"time"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/adapters/fs"
	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/adapters/s3"
	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

// options holds the internal configuration for the portal engine.
type options struct {
	repository   core.Repository
	logger       *slog.Logger
	adapter      string
	metrics      core.Metrics
	now          func() time.Time
	newID        func() string
	loginDelay   time.Duration
	admin        core.AdminCredentials
	readOnly     bool
	mustExist    bool
	eventBuffer  int
	serializers  map[string]fs.Serializer
	s3Client     s3.ObjectAPI
	s3Config     s3.Config
	errorHandler func(error)
}

// Option defines a functional option for configuring the engine.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:     "fs",
		serializers: make(map[string]fs.Serializer),
	}
}

// WithAdapter selects the storage adapter by name: "fs", "memory", "sqlite",
// "postgres" or "s3". Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithRepository injects a custom storage adapter (e.g. a mock).
// If provided, WithAdapter is ignored and Initialize is left to the caller.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithLogger sets the logger for the engine and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m core.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithIDGenerator overrides how ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}

// WithLoginDelay sets the artificial delay applied to every login attempt.
func WithLoginDelay(d time.Duration) Option {
	return func(o *options) {
		o.loginDelay = d
	}
}

// WithAdminCredentials registers the admin login. hash is a bcrypt hash.
func WithAdminCredentials(email, hash string) Option {
	return func(o *options) {
		o.admin = core.AdminCredentials{Email: email, Name: "Admin", PasswordHash: hash}
	}
}

// WithReadOnly enables read-only mode.
// Persisting returns core.ErrReadOnly and the fs adapter creates no directories.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithMustExist makes the fs adapter fail when the record file is missing.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithEventBuffer sets the buffer of the channel returned by Service.Watch.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithSerializer registers a record file format for an extension of the fs adapter.
func WithSerializer(ext string, s fs.Serializer) Option {
	return func(o *options) {
		o.serializers[ext] = s
	}
}

// WithS3Client supplies the object client used by the s3 adapter instead of
// building one from the AWS environment.
func WithS3Client(api s3.ObjectAPI) Option {
	return func(o *options) {
		o.s3Client = api
	}
}

// WithS3Config sets region, endpoint and credentials of the s3 adapter.
// Bucket and key come from the URI.
func WithS3Config(cfg s3.Config) Option {
	return func(o *options) {
		o.s3Config = cfg
	}
}

// WithWatcherErrorHandler registers a callback for errors of the fs watch loop,
// which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
