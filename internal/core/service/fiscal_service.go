package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cabinet-comptable/backoffice/internal/core/authz"
	"github.com/cabinet-comptable/backoffice/internal/core/domain"
	"github.com/cabinet-comptable/backoffice/internal/core/ports"
)

const defaultUpcomingLimit = 5

// FiscalService manages the fiscal calendar.
type FiscalService struct {
	repo ports.FiscalRepository
	eval *authz.Evaluator
	rec  recorder

	now   func() time.Time
	newID func() string
}

func NewFiscalService(repo ports.FiscalRepository, eval *authz.Evaluator, notifier ports.Notifier, audit ports.AuditRecorder, log zerolog.Logger) *FiscalService {
	return &FiscalService{
		repo:  repo,
		eval:  eval,
		rec:   newRecorder(notifier, audit, log),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *FiscalService) List(ctx context.Context, actor domain.Identity) ([]*domain.FiscalDeadline, error) {
	if err := authorize(s.eval, actor, domain.ActionView, domain.EntityDeadline); err != nil {
		return nil, err
	}
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list deadlines: %w", err)
	}
	return out, nil
}

// Upcoming returns the next deadlines from the start of today, earliest first.
func (s *FiscalService) Upcoming(ctx context.Context, actor domain.Identity, limit int) ([]*domain.FiscalDeadline, error) {
	if err := authorize(s.eval, actor, domain.ActionView, domain.EntityDeadline); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	out, err := s.repo.From(ctx, startOfDay(s.now()), limit)
	if err != nil {
		return nil, fmt.Errorf("upcoming deadlines: %w", err)
	}
	return out, nil
}

func (s *FiscalService) Create(ctx context.Context, actor domain.Identity, in domain.FiscalDeadlineInput) (_ *domain.FiscalDeadline, err error) {
	var id string
	defer func() {
		s.rec.outcome(ctx, actor, domain.EntityDeadline, id, "deadline.created", map[string]string{"Title": in.Title}, err)
	}()

	if err = authorize(s.eval, actor, domain.ActionCreate, domain.EntityDeadline); err != nil {
		return nil, err
	}
	if err = in.Validate(); err != nil {
		return nil, fmt.Errorf("create deadline: %w", err)
	}
	d := &domain.FiscalDeadline{
		ID:          s.newID(),
		Title:       strings.TrimSpace(in.Title),
		Date:        in.Date,
		Type:        in.Type,
		Description: in.Description,
		Urgent:      in.Urgent,
		CreatedBy:   actor.UserID,
		CreatedAt:   s.now().UTC(),
	}
	if err = s.repo.Insert(ctx, d); err != nil {
		return nil, fmt.Errorf("create deadline: %w", err)
	}
	id = d.ID
	return d, nil
}

func (s *FiscalService) Delete(ctx context.Context, actor domain.Identity, id string) (err error) {
	defer func() { s.rec.outcome(ctx, actor, domain.EntityDeadline, id, "deadline.deleted", nil, err) }()

	if err = authorize(s.eval, actor, domain.ActionDelete, domain.EntityDeadline); err != nil {
		return err
	}
	if err = s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete deadline: %w", err)
	}
	s.rec.record(ctx, actor, domain.EntityDeadline, id, domain.AuditDelete, "")
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
