package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cabinet-comptable/backoffice/internal/core/authz"
	"github.com/cabinet-comptable/backoffice/internal/core/domain"
	"github.com/cabinet-comptable/backoffice/internal/core/ports"
)

// DashboardService aggregates the home screen figures.
type DashboardService struct {
	clients  ports.ClientRepository
	tasks    ports.TaskRepository
	invoices ports.InvoiceRepository
	fiscal   ports.FiscalRepository
	eval     *authz.Evaluator
	log      zerolog.Logger
	now      func() time.Time
}

func NewDashboardService(
	clients ports.ClientRepository,
	tasks ports.TaskRepository,
	invoices ports.InvoiceRepository,
	fiscal ports.FiscalRepository,
	eval *authz.Evaluator,
	log zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		clients:  clients,
		tasks:    tasks,
		invoices: invoices,
		fiscal:   fiscal,
		eval:     eval,
		log:      log,
		now:      time.Now,
	}
}

// Summary computes the dashboard of actor. Revenue is only filled in for
// roles with financial field access.
func (s *DashboardService) Summary(ctx context.Context, actor domain.Identity) (*ports.DashboardSummary, error) {
	if !s.eval.CanView(actor.Role, domain.MenuDashboard) {
		return nil, fmt.Errorf("dashboard: %w", domain.ErrForbidden)
	}

	var (
		out ports.DashboardSummary
		err error
	)
	if out.ActiveClients, err = s.clients.CountByStatus(ctx, domain.ClientActive); err != nil {
		return nil, fmt.Errorf("dashboard: count clients: %w", err)
	}
	if out.TasksInProgress, err = s.tasks.CountByStatus(ctx, domain.TaskInProgress); err != nil {
		return nil, fmt.Errorf("dashboard: count tasks: %w", err)
	}

	now := s.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	month, err := s.invoices.IssuedBetween(ctx, from, from.AddDate(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("dashboard: invoices: %w", err)
	}
	out.InvoicesThisMonth = int64(len(month))

	if s.eval.CanViewSecret(actor.Role, domain.FieldFinancial) {
		var revenue float64
		for _, inv := range month {
			if inv.Status == domain.InvoicePaid {
				revenue += inv.AmountTTC
			}
		}
		out.Revenue = &revenue
	}

	if out.UpcomingDeadlines, err = s.fiscal.From(ctx, startOfDay(now), defaultUpcomingLimit); err != nil {
		return nil, fmt.Errorf("dashboard: deadlines: %w", err)
	}
	return &out, nil
}
