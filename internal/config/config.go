// Package config reads the portal settings from the environment and optional .env files.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Adapters accepted by PORTAL_ADAPTER.
var Adapters = []string{"fs", "memory", "sqlite", "postgres", "s3"}

// Config holds the portal configuration.
type Config struct {
	Adapter          string
	URI              string
	LogLevel         string
	ReadOnly         bool
	LoginDelay       time.Duration
	MetricsNamespace string
	Admin            AdminConfig
	S3               S3Config
}

// AdminConfig is the admin login.
type AdminConfig struct {
	Email        string
	PasswordHash string
}

// S3Config holds the object storage settings used by the s3 adapter.
type S3Config struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Load reads the given env files, then the environment. Missing files are
// skipped. Variables already set in the environment win over file values.
// With no files, ".env" is tried.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Adapter:          strings.ToLower(getEnv("PORTAL_ADAPTER", "fs")),
		URI:              getEnv("PORTAL_URI", "portal.json"),
		LogLevel:         strings.ToLower(getEnv("PORTAL_LOG_LEVEL", "info")),
		ReadOnly:         getBool("PORTAL_READ_ONLY", false),
		LoginDelay:       getDuration("PORTAL_LOGIN_DELAY", 500*time.Millisecond),
		MetricsNamespace: getEnv("PORTAL_METRICS_NAMESPACE", "portal"),
		Admin: AdminConfig{
			Email:        getEnv("PORTAL_ADMIN_EMAIL", ""),
			PasswordHash: getEnv("PORTAL_ADMIN_PASSWORD_HASH", ""),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable together.
func (c *Config) Validate() error {
	var errs []error

	known := false
	for _, a := range Adapters {
		if c.Adapter == a {
			known = true
			break
		}
	}
	if !known {
		errs = append(errs, fmt.Errorf("unknown adapter %q (want one of %s)", c.Adapter, strings.Join(Adapters, ", ")))
	}
	if c.URI == "" && c.Adapter != "memory" {
		errs = append(errs, errors.New("PORTAL_URI is required"))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LoginDelay < 0 {
		errs = append(errs, errors.New("PORTAL_LOGIN_DELAY must not be negative"))
	}
	if (c.Admin.Email == "") != (c.Admin.PasswordHash == "") {
		errs = append(errs, errors.New("PORTAL_ADMIN_EMAIL and PORTAL_ADMIN_PASSWORD_HASH must be set together"))
	}
	return errors.Join(errs...)
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
