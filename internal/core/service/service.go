package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cabinet-comptable/backoffice/internal/core/authz"
	"github.com/cabinet-comptable/backoffice/internal/core/domain"
	"github.com/cabinet-comptable/backoffice/internal/core/ports"
)

// authorize turns a denied capability into ErrForbidden.
func authorize(eval *authz.Evaluator, actor domain.Identity, action domain.Action, entity domain.EntityKind) error {
	if !eval.CanPerform(actor.Role, action, entity) {
		return fmt.Errorf("%s %s: %w", action, entity, domain.ErrForbidden)
	}
	return nil
}

// resultLabel maps an outcome onto a metric label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrMutationInFlight):
		return "in_flight"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	}
	return "error"
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, domain.Notification) {}

type nopAudit struct{}

func (nopAudit) Record(context.Context, domain.AuditEntry) error { return nil }

// recorder wraps the audit log and the notifier shared by every service.
type recorder struct {
	notifier ports.Notifier
	audit    ports.AuditRecorder
	log      zerolog.Logger
	now      func() time.Time
}

func newRecorder(n ports.Notifier, a ports.AuditRecorder, log zerolog.Logger) recorder {
	if n == nil {
		n = nopNotifier{}
	}
	if a == nil {
		a = nopAudit{}
	}
	return recorder{notifier: n, audit: a, log: log, now: time.Now}
}

// record appends to the audit log. A failed audit write is logged and does
// not undo the operation it describes.
func (r recorder) record(ctx context.Context, actor domain.Identity, entity domain.EntityKind, id, action, details string) {
	err := r.audit.Record(ctx, domain.AuditEntry{
		ActorID:   actor.UserID,
		ActorRole: actor.Role,
		Entity:    entity,
		EntityID:  id,
		Action:    action,
		Details:   details,
		CreatedAt: r.now().UTC(),
	})
	if err != nil {
		r.log.Warn().Err(err).Str("entity", string(entity)).Str("id", id).Str("action", action).Msg("failed to write audit entry")
	}
}

// outcome emits the notification of a finished operation. event is the
// message id of the success case; failures use "operation.failed".
func (r recorder) outcome(ctx context.Context, actor domain.Identity, entity domain.EntityKind, id, event string, data map[string]string, err error) {
	n := domain.Notification{
		Kind:     domain.NotifySuccess,
		Event:    event,
		Entity:   entity,
		EntityID: id,
		ActorID:  actor.UserID,
		Data:     data,
		At:       r.now().UTC(),
	}
	if err != nil {
		n.Kind = domain.NotifyError
		n.Event = "operation.failed"
		n.Data = map[string]string{"Operation": event, "Reason": errorReason(err)}
	}
	r.notifier.Notify(ctx, n)
}

// errorReason is the message id describing err to an end user.
func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMutationInFlight):
		return "reason.in_flight"
	case errors.Is(err, domain.ErrValidation):
		return "reason.invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "reason.not_found"
	case errors.Is(err, domain.ErrConflict):
		return "reason.conflict"
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrRoleCeiling):
		return "reason.forbidden"
	case errors.Is(err, domain.ErrTransport):
		return "reason.unavailable"
	}
	return "reason.unexpected"
}
