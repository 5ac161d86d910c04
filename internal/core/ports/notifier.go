package ports

import (
	"context"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

// Notifier delivers operation outcomes. Notify never blocks on delivery and
// never fails the calling operation.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// AuditRecorder appends to the audit log.
type AuditRecorder interface {
	Record(ctx context.Context, e domain.AuditEntry) error
}

// AuditReader lists audit entries, newest first. Empty filters match all.
type AuditReader interface {
	Recent(ctx context.Context, entity domain.EntityKind, entityID string, limit int) ([]domain.AuditEntry, error)
}
