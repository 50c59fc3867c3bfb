// Package gormdb stores the record set in a SQL database through gorm.
// Each client is one row holding its JSON document; the admin feed is a
// second table. Both are replaced inside one transaction on every persist.
package gormdb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/introspection"
	json "github.com/goccy/go-json"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

// Supported dialects.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

type clientRow struct {
	ID       string  `gorm:"primaryKey;size:64"`
	Email    *string `gorm:"uniqueIndex;size:320"`
	Position int     `gorm:"index;not null"`
	Payload  string  `gorm:"type:text;not null"`
}

func (clientRow) TableName() string { return "portal_clients" }

type adminNotificationRow struct {
	ID       string `gorm:"primaryKey;size:64"`
	Position int    `gorm:"index;not null"`
	Payload  string `gorm:"type:text;not null"`
}

func (adminNotificationRow) TableName() string { return "portal_admin_notifications" }

// Repository implements core.Repository on a gorm database.
type Repository struct {
	db      *gorm.DB
	dialect string
	logger  *slog.Logger
}

// Open connects to the database. dialect is "sqlite" or "postgres".
func Open(dialect, dsn string, log *slog.Logger) (*Repository, error) {
	var dial gorm.Dialector
	switch strings.ToLower(dialect) {
	case DialectSQLite:
		dial = sqlite.Open(dsn)
	case DialectPostgres, "postgresql":
		dial = postgres.Open(dsn)
		dialect = DialectPostgres
	default:
		return nil, fmt.Errorf("unsupported sql dialect: %q", dialect)
	}

	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	return NewRepository(db, strings.ToLower(dialect), log), nil
}

// NewRepository wraps an open gorm handle.
func NewRepository(db *gorm.DB, dialect string, log *slog.Logger) *Repository {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Repository{db: db, dialect: dialect, logger: log}
}

// DB exposes the gorm handle.
func (r *Repository) DB() *gorm.DB { return r.db }

// Initialize creates the tables.
func (r *Repository) Initialize(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&clientRow{}, &adminNotificationRow{}); err != nil {
		return fmt.Errorf("migrate record tables: %w", err)
	}
	return nil
}

// Load reads every row in persisted order.
func (r *Repository) Load(ctx context.Context) (core.Snapshot, error) {
	db := r.db.WithContext(ctx)

	var clients []clientRow
	if err := db.Order("position asc").Find(&clients).Error; err != nil {
		return core.Snapshot{}, fmt.Errorf("query clients: %w", err)
	}
	var feed []adminNotificationRow
	if err := db.Order("position asc").Find(&feed).Error; err != nil {
		return core.Snapshot{}, fmt.Errorf("query admin notifications: %w", err)
	}

	snap := core.Snapshot{Clients: make([]core.ClientEngagement, 0, len(clients))}
	for _, row := range clients {
		var c core.ClientEngagement
		if err := json.Unmarshal([]byte(row.Payload), &c); err != nil {
			return core.Snapshot{}, fmt.Errorf("decode client %s: %w", row.ID, err)
		}
		c.ID = row.ID
		snap.Clients = append(snap.Clients, c)
	}

	notes := make([]core.Notification, 0, len(feed))
	for _, row := range feed {
		var n core.Notification
		if err := json.Unmarshal([]byte(row.Payload), &n); err != nil {
			return core.Snapshot{}, fmt.Errorf("decode admin notification %s: %w", row.ID, err)
		}
		notes = append(notes, n)
	}
	snap.AdminFeed = core.NewInbox(notes...)

	r.logger.Debug("record set loaded", "dialect", r.dialect, "clients", len(snap.Clients))
	return snap, nil
}

// Persist replaces both tables with snap in a single transaction.
func (r *Repository) Persist(ctx context.Context, snap core.Snapshot) error {
	clients := make([]clientRow, 0, len(snap.Clients))
	for i, c := range snap.Clients {
		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode client %s: %w", c.ID, err)
		}
		row := clientRow{ID: c.ID, Position: i, Payload: string(payload)}
		if email := strings.ToLower(strings.TrimSpace(c.Email)); email != "" {
			row.Email = &email
		}
		clients = append(clients, row)
	}

	all := snap.AdminFeed.All()
	feed := make([]adminNotificationRow, 0, len(all))
	for i, n := range all {
		payload, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("encode admin notification %s: %w", n.ID, err)
		}
		feed = append(feed, adminNotificationRow{ID: n.ID, Position: i, Payload: string(payload)})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&clientRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&adminNotificationRow{}).Error; err != nil {
			return err
		}
		if len(clients) > 0 {
			if err := tx.CreateInBatches(clients, 100).Error; err != nil {
				return err
			}
		}
		if len(feed) > 0 {
			if err := tx.CreateInBatches(feed, 100).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace record tables: %w", err)
	}
	r.logger.Debug("record set persisted", "dialect", r.dialect, "clients", len(clients), "admin_notifications", len(feed))
	return nil
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	return map[string]string{
		"dialect":             r.dialect,
		"clients_table":       clientRow{}.TableName(),
		"notifications_table": adminNotificationRow{}.TableName(),
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string { return "sql-repository" }

var _ core.Repository = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
