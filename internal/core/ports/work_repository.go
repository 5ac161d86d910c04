package ports

import (
	"context"
	"time"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

type TaskRepository interface {
	// List returns every task ordered by due date.
	List(ctx context.Context) ([]*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	Insert(ctx context.Context, t *domain.Task) error
	Replace(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, status domain.TaskStatus) (int64, error)
}

type InvoiceRepository interface {
	// List returns every invoice, newest first.
	List(ctx context.Context) ([]*domain.Invoice, error)
	FindByID(ctx context.Context, id string) (*domain.Invoice, error)
	// IssuedBetween returns invoices with from <= issue_date < to.
	IssuedBetween(ctx context.Context, from, to time.Time) ([]*domain.Invoice, error)
	Insert(ctx context.Context, inv *domain.Invoice) error
	Replace(ctx context.Context, inv *domain.Invoice) error
	Delete(ctx context.Context, id string) error
	// NextSequence atomically allocates the next invoice number of year.
	NextSequence(ctx context.Context, year int) (int64, error)
}

type FiscalRepository interface {
	// List returns every deadline, earliest first.
	List(ctx context.Context) ([]*domain.FiscalDeadline, error)
	// From returns up to limit deadlines dated on or after from, earliest first.
	From(ctx context.Context, from time.Time, limit int) ([]*domain.FiscalDeadline, error)
	Insert(ctx context.Context, d *domain.FiscalDeadline) error
	Delete(ctx context.Context, id string) error
}
