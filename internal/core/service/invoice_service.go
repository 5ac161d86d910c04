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
	"github.com/cabinet-comptable/backoffice/internal/pkg/currency"
)

// defaultPaymentTerm applies when an invoice is issued without a due date.
const defaultPaymentTerm = 30 * 24 * time.Hour

type InvoiceService struct {
	repo    ports.InvoiceRepository
	clients ports.ClientRepository
	eval    *authz.Evaluator
	rec     recorder

	now   func() time.Time
	newID func() string
}

func NewInvoiceService(
	repo ports.InvoiceRepository,
	clients ports.ClientRepository,
	eval *authz.Evaluator,
	notifier ports.Notifier,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *InvoiceService {
	return &InvoiceService{
		repo:    repo,
		clients: clients,
		eval:    eval,
		rec:     newRecorder(notifier, audit, log),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// List returns the invoices matching term, newest first, with unpaid
// invoices past due reported late.
func (s *InvoiceService) List(ctx context.Context, actor domain.Identity, term string) ([]*domain.Invoice, error) {
	if err := authorize(s.eval, actor, domain.ActionView, domain.EntityInvoice); err != nil {
		return nil, err
	}
	invoices, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	now := s.now()
	term = strings.TrimSpace(term)
	out := make([]*domain.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if !inv.Matches(term) {
			continue
		}
		inv.Status = inv.EffectiveStatus(now)
		out = append(out, inv)
	}
	return out, nil
}

// Create issues an invoice. The number is allocated from the counter of the
// issue year; VAT and the tax-inclusive total are derived from the HT amount.
func (s *InvoiceService) Create(ctx context.Context, actor domain.Identity, in domain.InvoiceInput) (_ *domain.Invoice, err error) {
	var id, numero string
	defer func() {
		s.rec.outcome(ctx, actor, domain.EntityInvoice, id, "invoice.created", map[string]string{"Numero": numero}, err)
	}()

	if err = authorize(s.eval, actor, domain.ActionCreate, domain.EntityInvoice); err != nil {
		return nil, err
	}
	if err = in.Validate(); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	c, err := s.clients.FindByID(ctx, in.ClientID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("create invoice: %w", domain.Invalid("client_id", "does not match a client"))
	}
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	now := s.now().UTC()
	issue := in.IssueDate
	if issue.IsZero() {
		issue = now
	}
	due := in.DueDate
	if due.IsZero() {
		due = issue.Add(defaultPaymentTerm)
	}

	seq, err := s.repo.NextSequence(ctx, issue.Year())
	if err != nil {
		return nil, fmt.Errorf("create invoice: allocate number: %w", err)
	}
	numero = domain.InvoiceNumber(issue.Year(), seq)

	inv := &domain.Invoice{
		ID:         s.newID(),
		Numero:     numero,
		ClientID:   c.ID,
		ClientName: c.NomCommercial,
		Type:       strings.TrimSpace(in.Type),
		IssueDate:  issue,
		DueDate:    due,
		AmountHT:   in.AmountHT,
		AmountTVA:  currency.CalculateTVA(in.AmountHT),
		AmountTTC:  currency.CalculateTTC(in.AmountHT),
		Status:     domain.InvoicePending,
		CreatedBy:  actor.UserID,
		CreatedAt:  now,
	}
	if err = s.repo.Insert(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	id = inv.ID
	return inv, nil
}

func (s *InvoiceService) SetStatus(ctx context.Context, actor domain.Identity, id string, status domain.InvoiceStatus) (_ *domain.Invoice, err error) {
	var numero string
	defer func() {
		s.rec.outcome(ctx, actor, domain.EntityInvoice, id, "invoice.updated", map[string]string{"Numero": numero}, err)
	}()

	if err = authorize(s.eval, actor, domain.ActionUpdate, domain.EntityInvoice); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, domain.Invalid("status", "must be one of Payée, En attente, En retard")
	}
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}
	numero = inv.Numero

	inv.Status = status
	if err = s.repo.Replace(ctx, inv); err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}
	return inv, nil
}

func (s *InvoiceService) Delete(ctx context.Context, actor domain.Identity, id string) (err error) {
	defer func() { s.rec.outcome(ctx, actor, domain.EntityInvoice, id, "invoice.deleted", nil, err) }()

	if err = authorize(s.eval, actor, domain.ActionDelete, domain.EntityInvoice); err != nil {
		return err
	}
	if err = s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	s.rec.record(ctx, actor, domain.EntityInvoice, id, domain.AuditDelete, "")
	return nil
}
