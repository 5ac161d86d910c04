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

type TaskService struct {
	repo    ports.TaskRepository
	clients ports.ClientRepository
	users   ports.UserRepository
	eval    *authz.Evaluator
	rec     recorder

	now   func() time.Time
	newID func() string
}

func NewTaskService(
	repo ports.TaskRepository,
	clients ports.ClientRepository,
	users ports.UserRepository,
	eval *authz.Evaluator,
	notifier ports.Notifier,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *TaskService {
	return &TaskService{
		repo:    repo,
		clients: clients,
		users:   users,
		eval:    eval,
		rec:     newRecorder(notifier, audit, log),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// List returns the tasks matching term with their effective status: an
// unfinished task past its due date is reported late.
func (s *TaskService) List(ctx context.Context, actor domain.Identity, term string) ([]*domain.Task, error) {
	if err := authorize(s.eval, actor, domain.ActionView, domain.EntityTask); err != nil {
		return nil, err
	}
	tasks, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	now := s.now()
	term = strings.TrimSpace(term)
	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Matches(term) {
			continue
		}
		t.Status = t.EffectiveStatus(now)
		out = append(out, t)
	}
	return out, nil
}

func (s *TaskService) Create(ctx context.Context, actor domain.Identity, in domain.TaskInput) (_ *domain.Task, err error) {
	var id string
	defer func() {
		s.rec.outcome(ctx, actor, domain.EntityTask, id, "task.created", map[string]string{"Title": in.Title}, err)
	}()

	if err = authorize(s.eval, actor, domain.ActionCreate, domain.EntityTask); err != nil {
		return nil, err
	}
	if err = in.Validate(); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	now := s.now().UTC()
	t := &domain.Task{
		ID:          s.newID(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      domain.TaskTodo,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	if err = s.resolveClient(ctx, t, in.ClientID); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	if err = s.resolveAssignee(ctx, t, in.AssigneeID); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	if err = s.repo.Insert(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	id = t.ID
	return t, nil
}

func (s *TaskService) Update(ctx context.Context, actor domain.Identity, id string, patch domain.TaskPatch) (_ *domain.Task, err error) {
	var title string
	defer func() {
		s.rec.outcome(ctx, actor, domain.EntityTask, id, "task.updated", map[string]string{"Title": title}, err)
	}()

	if err = authorize(s.eval, actor, domain.ActionUpdate, domain.EntityTask); err != nil {
		return nil, err
	}
	if err = patch.Validate(); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	title = t.Title

	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		t.DueDate = *patch.DueDate
	}
	if patch.AssigneeID != nil {
		if err = s.resolveAssignee(ctx, t, *patch.AssigneeID); err != nil {
			return nil, fmt.Errorf("update task: %w", err)
		}
	}
	t.UpdatedAt = s.now().UTC()

	if err = s.repo.Replace(ctx, t); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	t.Status = t.EffectiveStatus(s.now())
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, actor domain.Identity, id string) (err error) {
	defer func() { s.rec.outcome(ctx, actor, domain.EntityTask, id, "task.deleted", nil, err) }()

	if err = authorize(s.eval, actor, domain.ActionDelete, domain.EntityTask); err != nil {
		return err
	}
	if err = s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.rec.record(ctx, actor, domain.EntityTask, id, domain.AuditDelete, "")
	return nil
}

func (s *TaskService) resolveClient(ctx context.Context, t *domain.Task, clientID string) error {
	if clientID == "" {
		return nil
	}
	c, err := s.clients.FindByID(ctx, clientID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Invalid("client_id", "does not match a client")
	}
	if err != nil {
		return err
	}
	t.ClientID, t.ClientName = c.ID, c.NomCommercial
	return nil
}

// resolveAssignee sets the assignee; an empty id unassigns the task.
func (s *TaskService) resolveAssignee(ctx context.Context, t *domain.Task, userID string) error {
	if userID == "" {
		t.AssigneeID, t.AssigneeName = "", ""
		return nil
	}
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Invalid("assignee_id", "does not match a user")
	}
	if err != nil {
		return err
	}
	t.AssigneeID, t.AssigneeName = u.ID, u.FullName
	return nil
}
