// Package audit stores the audit trail in a SQL database through GORM.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

// Driver names accepted by Open.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

var ErrInvalidDriver = errors.New("audit: unsupported database driver")

// Log is the persisted form of domain.AuditEntry.
type Log struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`
	ActorID   string    `gorm:"size:64;index"`
	ActorRole string    `gorm:"size:32"`
	Entity    string    `gorm:"size:32;index:idx_audit_entity"`
	EntityID  string    `gorm:"size:64;index:idx_audit_entity"`
	Action    string    `gorm:"size:32"`
	Details   string    `gorm:"type:text"`
}

func (Log) TableName() string { return "audit_logs" }

// Store implements ports.AuditRecorder.
type Store struct {
	db *gorm.DB
}

// Open connects to the audit database and migrates the schema.
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case Postgres:
		dialector = postgres.Open(dsn)
	case MySQL:
		dialector = mysql.Open(dsn)
	case SQLite, "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", driver, err)
	}
	return New(db)
}

// New wraps an existing connection and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Log{}); err != nil {
		return nil, fmt.Errorf("audit: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Record(ctx context.Context, e domain.AuditEntry) error {
	row := Log{
		CreatedAt: e.CreatedAt,
		ActorID:   e.ActorID,
		ActorRole: string(e.ActorRole),
		Entity:    string(e.Entity),
		EntityID:  e.EntityID,
		Action:    e.Action,
		Details:   e.Details,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("audit: record: %w: %v", domain.ErrTransport, err)
	}
	return nil
}

// Recent returns the latest entries, newest first. An empty entityID
// returns every entity.
func (s *Store) Recent(ctx context.Context, entity domain.EntityKind, entityID string, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	q := s.db.WithContext(ctx).Order("created_at desc, id desc").Limit(limit)
	if entity != "" {
		q = q.Where("entity = ?", string(entity))
	}
	if entityID != "" {
		q = q.Where("entity_id = ?", entityID)
	}
	var rows []Log
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("audit: recent: %w: %v", domain.ErrTransport, err)
	}
	out := make([]domain.AuditEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.AuditEntry{
			ActorID:   r.ActorID,
			ActorRole: domain.Role(r.ActorRole),
			Entity:    domain.EntityKind(r.Entity),
			EntityID:  r.EntityID,
			Action:    r.Action,
			Details:   r.Details,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
