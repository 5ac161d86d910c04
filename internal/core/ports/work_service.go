package ports

import (
	"context"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

type TaskService interface {
	List(ctx context.Context, actor domain.Identity, term string) ([]*domain.Task, error)
	Create(ctx context.Context, actor domain.Identity, in domain.TaskInput) (*domain.Task, error)
	Update(ctx context.Context, actor domain.Identity, id string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, actor domain.Identity, id string) error
}

type InvoiceService interface {
	List(ctx context.Context, actor domain.Identity, term string) ([]*domain.Invoice, error)
	Create(ctx context.Context, actor domain.Identity, in domain.InvoiceInput) (*domain.Invoice, error)
	SetStatus(ctx context.Context, actor domain.Identity, id string, status domain.InvoiceStatus) (*domain.Invoice, error)
	Delete(ctx context.Context, actor domain.Identity, id string) error
}

type FiscalService interface {
	List(ctx context.Context, actor domain.Identity) ([]*domain.FiscalDeadline, error)
	Upcoming(ctx context.Context, actor domain.Identity, limit int) ([]*domain.FiscalDeadline, error)
	Create(ctx context.Context, actor domain.Identity, in domain.FiscalDeadlineInput) (*domain.FiscalDeadline, error)
	Delete(ctx context.Context, actor domain.Identity, id string) error
}

// DashboardSummary is the home screen. Revenue is nil for roles without
// financial field access.
type DashboardSummary struct {
	ActiveClients     int64
	TasksInProgress   int64
	InvoicesThisMonth int64
	Revenue           *float64
	UpcomingDeadlines []*domain.FiscalDeadline
}

type DashboardService interface {
	Summary(ctx context.Context, actor domain.Identity) (*DashboardSummary, error)
}
