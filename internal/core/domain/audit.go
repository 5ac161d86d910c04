package domain

import "time"

// Audit actions recorded for sensitive operations.
const (
	AuditCreate       = "create"
	AuditUpdate       = "update"
	AuditDelete       = "delete"
	AuditReveal       = "reveal_secret"
	AuditRoleChange   = "role_change"
	AuditDeactivate   = "deactivate"
	AuditReactivate   = "reactivate"
	AuditSecretChange = "secret_change"
)

// AuditEntry records who did what to which entity.
type AuditEntry struct {
	ActorID   string
	ActorRole Role
	Entity    EntityKind
	EntityID  string
	Action    string
	Details   string
	CreatedAt time.Time
}
