package platform

import (
	"context"
	"fmt"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/internal/config"
	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/adapters/s3"
	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

// New initializes the repository, loads the record set and returns the engine.
//
//	svc, err := portal.New("./portal.json", portal.WithLoginDelay(0))
//
// The URI argument is adapter-specific (see Init).
func New(uri string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	ctx := context.Background()
	repo, err := initRepository(ctx, uri, o)
	if err != nil {
		return nil, err
	}

	store := core.NewStore(repo)
	if err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load record set: %w", err)
	}

	svcOpts := []core.ServiceOption{
		core.WithServiceLogger(o.logger),
		core.WithServiceMetrics(o.metrics),
		core.WithClock(o.now),
		core.WithIDGenerator(o.newID),
		core.WithLoginDelay(o.loginDelay),
		core.WithAdmin(o.admin),
		core.WithEventBuffer(o.eventBuffer),
	}
	return core.NewService(store, svcOpts...), nil
}

// FromConfig translates the environment configuration into options.
func FromConfig(cfg *config.Config) []Option {
	opts := []Option{
		WithAdapter(cfg.Adapter),
		WithReadOnly(cfg.ReadOnly),
		WithLoginDelay(cfg.LoginDelay),
		WithS3Config(s3.Config{
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		}),
	}
	if cfg.Admin.Email != "" {
		opts = append(opts, WithAdminCredentials(cfg.Admin.Email, cfg.Admin.PasswordHash))
	}
	return opts
}
