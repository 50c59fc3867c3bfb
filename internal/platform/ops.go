package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/adapters/fs"
	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/adapters/gormdb"
	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/adapters/memory"
	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/adapters/s3"
	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

// Init prepares the storage adapter selected by the options.
// The 'uri' argument is adapter-specific: a file path for 'fs', a DSN for
// 'sqlite'/'postgres', "s3://bucket/key" for 's3'; 'memory' ignores it.
//
// It returns the initialized core.Repository.
func Init(uri string, opts ...Option) (core.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return initRepository(context.Background(), uri, o)
}

func initRepository(ctx context.Context, uri string, o *options) (core.Repository, error) {
	// 1. Check for injected repository
	if o.repository != nil {
		return o.repository, nil
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// 2. Build the adapter
	var repo core.Repository
	switch strings.ToLower(o.adapter) {
	case "fs", "":
		repo = initFS(uri, o, logger)
	case "memory":
		repo = memory.NewRepository()
	case gormdb.DialectSQLite, gormdb.DialectPostgres:
		if o.readOnly {
			return nil, fmt.Errorf("%s adapter: %w", o.adapter, core.ErrReadOnly)
		}
		r, err := gormdb.Open(o.adapter, uri, logger)
		if err != nil {
			return nil, err
		}
		repo = r
	case "s3":
		r, err := initS3(ctx, uri, o, logger)
		if err != nil {
			return nil, err
		}
		repo = r
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}

	// 3. Run Initialization
	if err := repo.Initialize(ctx); err != nil {
		return nil, err
	}
	logger.Debug("repository ready", "adapter", o.adapter)
	return repo, nil
}

// initFS builds the filesystem adapter. A relative path that does not exist in
// the working directory is looked up in the parent directories first.
func initFS(path string, o *options, logger *slog.Logger) core.Repository {
	if path == "" {
		path = DefaultRecordFile
	}
	if found, err := FindRecordFile(".", path); err == nil {
		path = found
	}

	serializers := fs.DefaultSerializers()
	for ext, s := range o.serializers {
		serializers[ext] = s
	}

	return fs.NewRepository(fs.Config{
		Path:         path,
		MustExist:    o.mustExist,
		ReadOnly:     o.readOnly,
		Logger:       logger,
		ErrorHandler: o.errorHandler,
		Serializers:  serializers,
	})
}

func initS3(ctx context.Context, uri string, o *options, logger *slog.Logger) (*s3.Repository, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	cfg := o.s3Config
	cfg.Bucket = bucket
	cfg.Key = key
	cfg.ReadOnly = o.readOnly
	cfg.Logger = logger

	if o.s3Client != nil {
		return s3.NewRepository(o.s3Client, cfg), nil
	}
	return s3.New(ctx, cfg)
}

// ParseS3URI splits "s3://bucket/key" (or "bucket/key") into its parts.
// The key defaults to "portal.json".
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(uri, "s3://")
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid s3 uri %q: missing bucket", uri)
	}
	if key == "" {
		key = DefaultRecordFile
	}
	return bucket, key, nil
}
