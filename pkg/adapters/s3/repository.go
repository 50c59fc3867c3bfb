// Package s3 keeps the record set as a single JSON object in an S3 bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	json "github.com/goccy/go-json"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

// ObjectAPI is the part of the S3 client the repository needs.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Config locates the record object and the credentials to reach it.
type Config struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string // custom endpoint, e.g. MinIO or LocalStack
	AccessKeyID     string
	SecretAccessKey string
	ReadOnly        bool
	Logger          *slog.Logger
}

// Repository implements core.Repository on one S3 object.
type Repository struct {
	api    ObjectAPI
	config Config
	logger *slog.Logger
}

// New builds an S3 client from cfg and the default AWS credential chain.
func New(ctx context.Context, cfg Config) (*Repository, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	var optFns []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewRepository(client, cfg), nil
}

// NewRepository wraps an existing client. An empty key defaults to "portal.json".
func NewRepository(api ObjectAPI, cfg Config) *Repository {
	if cfg.Key == "" {
		cfg.Key = "portal.json"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Repository{api: api, config: cfg, logger: logger}
}

// Initialize checks that the bucket is reachable.
func (r *Repository) Initialize(ctx context.Context) error {
	_, err := r.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(r.config.Bucket)})
	if err != nil {
		return fmt.Errorf("bucket %s not reachable: %w", r.config.Bucket, err)
	}
	return nil
}

// Load downloads the record object. A missing object is an empty record set.
func (r *Repository) Load(ctx context.Context) (core.Snapshot, error) {
	out, err := r.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.config.Bucket),
		Key:    aws.String(r.config.Key),
	})
	if err != nil {
		if isNotFoundError(err) {
			r.logger.Debug("record object missing, starting empty", "bucket", r.config.Bucket, "key", r.config.Key)
			return core.Snapshot{}, nil
		}
		return core.Snapshot{}, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to read object: %w", err)
	}
	var snap core.Snapshot
	if len(bytes.TrimSpace(data)) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return core.Snapshot{}, fmt.Errorf("decode record object: %w", err)
	}
	return snap, nil
}

// Persist uploads the record set, replacing the object.
func (r *Repository) Persist(ctx context.Context, snap core.Snapshot) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if snap.Clients == nil {
		snap.Clients = []core.ClientEngagement{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode record set: %w", err)
	}

	_, err = r.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.config.Bucket),
		Key:           aws.String(r.config.Key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	r.logger.Debug("record set uploaded", "bucket", r.config.Bucket, "key", r.config.Key, "size", len(data))
	return nil
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	return map[string]any{
		"bucket":    r.config.Bucket,
		"key":       r.config.Key,
		"endpoint":  r.config.Endpoint,
		"read_only": r.config.ReadOnly,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string { return "s3-repository" }

func isNotFoundError(err error) bool {
	var nsk *s3types.NoSuchKey
	var nf *s3types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}

var _ core.Repository = (*Repository)(nil)
