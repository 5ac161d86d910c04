package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cabinet-comptable/backoffice/internal/core/authz"
	"github.com/cabinet-comptable/backoffice/internal/core/domain"
	"github.com/cabinet-comptable/backoffice/internal/core/ports"
)

// UserService lets administrators authorize users and manage their roles.
// An actor may only act on users whose current role and new role are both
// inside its management scope, and never on its own account.
type UserService struct {
	repo     ports.UserRepository
	sessions ports.SessionStore
	guard    ports.MutationGuard
	eval     *authz.Evaluator
	rec      recorder
	log      zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewUserService(
	repo ports.UserRepository,
	sessions ports.SessionStore,
	guard ports.MutationGuard,
	eval *authz.Evaluator,
	notifier ports.Notifier,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		repo:     repo,
		sessions: sessions,
		guard:    guard,
		eval:     eval,
		rec:      newRecorder(notifier, audit, log),
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// List returns every profile, newest first.
func (s *UserService) List(ctx context.Context, actor domain.Identity) ([]*domain.UserProfile, error) {
	if err := authorize(s.eval, actor, domain.ActionView, domain.EntityUser); err != nil {
		return nil, err
	}
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Create(ctx context.Context, actor domain.Identity, in domain.NewUserInput) (_ *domain.UserProfile, err error) {
	var id string
	defer func() {
		s.rec.outcome(ctx, actor, domain.EntityUser, id, "user.created", map[string]string{"Email": in.Email}, err)
	}()

	if err = authorize(s.eval, actor, domain.ActionCreate, domain.EntityUser); err != nil {
		return nil, err
	}
	if err = in.Validate(); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if err = s.checkRole(actor, in.Role); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	email := domain.NormalizeEmail(in.Email)
	if _, ferr := s.repo.FindByEmail(ctx, email); ferr == nil {
		return nil, fmt.Errorf("create user %s: %w", email, domain.ErrConflict)
	} else if !errors.Is(ferr, domain.ErrNotFound) {
		return nil, fmt.Errorf("create user: %w", ferr)
	}

	now := s.now().UTC()
	u := &domain.UserProfile{
		ID:        s.newID(),
		Email:     email,
		FullName:  strings.TrimSpace(in.FullName),
		Role:      in.Role,
		Phone:     strings.TrimSpace(in.Phone),
		IsActive:  true,
		CreatedBy: actor.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = s.repo.Insert(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	id = u.ID
	s.rec.record(ctx, actor, domain.EntityUser, u.ID, domain.AuditCreate, string(u.Role))
	return u, nil
}

// SetActive enables or disables an account. Disabling revokes the user's
// live sessions.
func (s *UserService) SetActive(ctx context.Context, actor domain.Identity, id string, active bool) (_ *domain.UserProfile, err error) {
	event, action := "user.reactivated", domain.AuditReactivate
	if !active {
		event, action = "user.deactivated", domain.AuditDeactivate
	}
	var email string
	defer func() {
		s.rec.outcome(ctx, actor, domain.EntityUser, id, event, map[string]string{"Email": email}, err)
	}()

	release, err := s.guard.Acquire(ctx, "user:"+id)
	if err != nil {
		return nil, err
	}
	defer release()

	u, err := s.target(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	email = u.Email

	if u, err = s.repo.SetActive(ctx, id, active, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("set user active: %w", err)
	}
	if !active {
		s.revokeSessions(ctx, u.ID)
	}
	s.rec.record(ctx, actor, domain.EntityUser, u.ID, action, "")
	return u, nil
}

// ChangeRole assigns a new role. Existing sessions are revoked so the next
// token carries the new role.
func (s *UserService) ChangeRole(ctx context.Context, actor domain.Identity, id string, role domain.Role) (_ *domain.UserProfile, err error) {
	var email string
	defer func() {
		s.rec.outcome(ctx, actor, domain.EntityUser, id, "user.role_changed", map[string]string{"Email": email, "Role": string(role)}, err)
	}()

	release, err := s.guard.Acquire(ctx, "user:"+id)
	if err != nil {
		return nil, err
	}
	defer release()

	u, err := s.target(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	email = u.Email
	if err = s.checkRole(actor, role); err != nil {
		return nil, fmt.Errorf("change role: %w", err)
	}
	if u.Role == role {
		return u, nil
	}

	previous := u.Role
	if u, err = s.repo.SetRole(ctx, id, role, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("change role: %w", err)
	}
	s.revokeSessions(ctx, u.ID)
	s.rec.record(ctx, actor, domain.EntityUser, u.ID, domain.AuditRoleChange, string(previous)+" -> "+string(role))
	return u, nil
}

// target loads a user the actor is allowed to edit.
func (s *UserService) target(ctx context.Context, actor domain.Identity, id string) (*domain.UserProfile, error) {
	if err := authorize(s.eval, actor, domain.ActionUpdate, domain.EntityUser); err != nil {
		return nil, err
	}
	if id == actor.UserID {
		return nil, fmt.Errorf("edit own account: %w", domain.ErrForbidden)
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !s.eval.CanAssignRole(actor.Role, u.Role) {
		return nil, fmt.Errorf("edit %s user: %w", u.Role, domain.ErrRoleCeiling)
	}
	return u, nil
}

func (s *UserService) checkRole(actor domain.Identity, role domain.Role) error {
	if !s.eval.Registry().Known(role) {
		return domain.Invalid("role", "is not a known role")
	}
	if !s.eval.CanAssignRole(actor.Role, role) {
		return fmt.Errorf("assign %s: %w", role, domain.ErrRoleCeiling)
	}
	return nil
}

func (s *UserService) revokeSessions(ctx context.Context, userID string) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.RevokeUser(ctx, userID, s.now().UTC()); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to revoke sessions")
	}
}
