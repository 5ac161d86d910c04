package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
	"github.com/cabinet-comptable/backoffice/internal/core/ports"
)

// --- stubs ---

type stubTaskService struct {
	ports.TaskService
	createFn func(ctx context.Context, actor domain.Identity, in domain.TaskInput) (*domain.Task, error)
	updateFn func(ctx context.Context, actor domain.Identity, id string, p domain.TaskPatch) (*domain.Task, error)
}

func (s *stubTaskService) Create(ctx context.Context, actor domain.Identity, in domain.TaskInput) (*domain.Task, error) {
	return s.createFn(ctx, actor, in)
}
func (s *stubTaskService) Update(ctx context.Context, actor domain.Identity, id string, p domain.TaskPatch) (*domain.Task, error) {
	return s.updateFn(ctx, actor, id, p)
}

type stubInvoiceService struct {
	ports.InvoiceService
	listFn func(ctx context.Context, actor domain.Identity, term string) ([]*domain.Invoice, error)
}

func (s *stubInvoiceService) List(ctx context.Context, actor domain.Identity, term string) ([]*domain.Invoice, error) {
	return s.listFn(ctx, actor, term)
}

type stubFiscalService struct {
	ports.FiscalService
	upcomingFn func(ctx context.Context, actor domain.Identity, limit int) ([]*domain.FiscalDeadline, error)
}

func (s *stubFiscalService) Upcoming(ctx context.Context, actor domain.Identity, limit int) ([]*domain.FiscalDeadline, error) {
	return s.upcomingFn(ctx, actor, limit)
}

type stubDashboardService struct {
	summary *ports.DashboardSummary
}

func (s *stubDashboardService) Summary(context.Context, domain.Identity) (*ports.DashboardSummary, error) {
	return s.summary, nil
}

type stubUserService struct {
	ports.UserService
	setActiveFn func(ctx context.Context, actor domain.Identity, id string, active bool) (*domain.UserProfile, error)
}

func (s *stubUserService) SetActive(ctx context.Context, actor domain.Identity, id string, active bool) (*domain.UserProfile, error) {
	return s.setActiveFn(ctx, actor, id, active)
}

type stubAuditReader struct {
	limit int
}

func (s *stubAuditReader) Recent(_ context.Context, entity domain.EntityKind, entityID string, limit int) ([]domain.AuditEntry, error) {
	s.limit = limit
	return []domain.AuditEntry{{ActorID: "u1", Entity: entity, EntityID: entityID, Action: domain.AuditReveal}}, nil
}

// --- Tasks ---

func TestTaskHandler_Create_ParsesDueDate(t *testing.T) {
	h := NewTaskHandler(&stubTaskService{
		createFn: func(_ context.Context, _ domain.Identity, in domain.TaskInput) (*domain.Task, error) {
			want := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
			if !in.DueDate.Equal(want) || in.Priority != domain.PriorityHigh {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Task{ID: "t1", Title: in.Title, DueDate: in.DueDate, Priority: in.Priority, Status: domain.TaskTodo}, nil
		},
	})
	c, rec := newContext(http.MethodPost, "/v1/tasks", `{"title":"Déclaration TVA","priority":"Haute","due_date":"2025-04-30"}`, employeeID)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp taskResponse
	decode(t, rec, &resp)
	if resp.DueDate != "2025-04-30" || resp.Status != domain.TaskTodo {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTaskHandler_Create_BadDate(t *testing.T) {
	h := NewTaskHandler(&stubTaskService{})
	c, _ := newContext(http.MethodPost, "/v1/tasks", `{"title":"x","due_date":"30/04/2025"}`, employeeID)

	if code := httpCode(t, h.Create(c)); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
}

func TestTaskHandler_Update_Status(t *testing.T) {
	h := NewTaskHandler(&stubTaskService{
		updateFn: func(_ context.Context, _ domain.Identity, id string, p domain.TaskPatch) (*domain.Task, error) {
			if p.Status == nil || *p.Status != domain.TaskDone || p.Priority != nil {
				t.Fatalf("unexpected patch: %+v", p)
			}
			return &domain.Task{ID: id, Status: *p.Status}, nil
		},
	})
	c, rec := newContext(http.MethodPatch, "/v1/tasks/t1", `{"status":"Terminé"}`, domain.Identity{UserID: "u-t", Role: domain.RoleTrainee})
	c.SetParamNames("id")
	c.SetParamValues("t1")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

// --- Invoices ---

func TestInvoiceHandler_List_FormatsAmounts(t *testing.T) {
	h := NewInvoiceHandler(&stubInvoiceService{
		listFn: func(context.Context, domain.Identity, string) ([]*domain.Invoice, error) {
			return []*domain.Invoice{{
				ID: "i1", Numero: "FACT-2025-001", AmountHT: 1000, AmountTVA: 200, AmountTTC: 1200,
				Status: domain.InvoicePending,
			}}, nil
		},
	})
	c, rec := newContext(http.MethodGet, "/v1/invoices", "", employeeID)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp invoiceListResponse
	decode(t, rec, &resp)
	if len(resp.Items) != 1 {
		t.Fatalf("expected one invoice")
	}
	d := resp.Items[0].Display
	for _, s := range []string{d.HT, d.TVA, d.TTC} {
		if !strings.HasSuffix(s, " MAD") {
			t.Fatalf("amount not formatted: %q", s)
		}
	}
	if !strings.Contains(d.TTC, "200,00") {
		t.Fatalf("unexpected TTC display %q", d.TTC)
	}
}

func TestInvoiceHandler_Create_RejectsNonPositiveHT(t *testing.T) {
	h := NewInvoiceHandler(&stubInvoiceService{})
	c, _ := newContext(http.MethodPost, "/v1/invoices", `{"client_id":"c1","amount_ht":0}`, employeeID)

	if code := httpCode(t, h.Create(c)); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
}

// --- Fiscal calendar ---

func TestFiscalHandler_Upcoming_Limit(t *testing.T) {
	var gotLimit int
	h := NewFiscalHandler(&stubFiscalService{
		upcomingFn: func(_ context.Context, _ domain.Identity, limit int) ([]*domain.FiscalDeadline, error) {
			gotLimit = limit
			return []*domain.FiscalDeadline{{ID: "f1", Title: "TVA mars", Type: domain.FiscalTVA, Date: time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)}}, nil
		},
	})
	c, rec := newContext(http.MethodGet, "/v1/fiscal-deadlines/upcoming?limit=3", "", employeeID)

	if err := h.Upcoming(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gotLimit != 3 {
		t.Fatalf("expected limit 3, got %d", gotLimit)
	}
	var resp deadlineListResponse
	decode(t, rec, &resp)
	if resp.Items[0].Date != "2025-04-20" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestFiscalHandler_Create_RejectsUnknownType(t *testing.T) {
	h := NewFiscalHandler(&stubFiscalService{})
	c, _ := newContext(http.MethodPost, "/v1/fiscal-deadlines", `{"title":"x","date":"2025-04-20","type":"CNSS"}`, employeeID)

	if code := httpCode(t, h.Create(c)); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
}

// --- Dashboard ---

func TestDashboardHandler_OmitsRevenueWithoutAccess(t *testing.T) {
	h := NewDashboardHandler(&stubDashboardService{summary: &ports.DashboardSummary{ActiveClients: 4}})
	c, rec := newContext(http.MethodGet, "/v1/dashboard", "", employeeID)

	if err := h.Summary(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if strings.Contains(rec.Body.String(), "revenue") {
		t.Fatalf("revenue must be omitted: %s", rec.Body.String())
	}
}

func TestDashboardHandler_IncludesRevenue(t *testing.T) {
	revenue := 12000.0
	h := NewDashboardHandler(&stubDashboardService{summary: &ports.DashboardSummary{Revenue: &revenue}})
	c, rec := newContext(http.MethodGet, "/v1/dashboard", "", adminID)

	if err := h.Summary(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp dashboardResponse
	decode(t, rec, &resp)
	if resp.Revenue == nil || *resp.Revenue != 12000 || !strings.HasSuffix(resp.RevenueDisplay, "MAD") {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

// --- Users ---

func TestUserHandler_SetActive_RequiresFlag(t *testing.T) {
	h := NewUserHandler(&stubUserService{})
	c, _ := newContext(http.MethodPut, "/v1/users/u2/active", `{}`, adminID)
	c.SetParamNames("id")
	c.SetParamValues("u2")

	if code := httpCode(t, h.SetActive(c)); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
}

func TestUserHandler_SetActive_PropagatesCeiling(t *testing.T) {
	h := NewUserHandler(&stubUserService{
		setActiveFn: func(_ context.Context, _ domain.Identity, id string, active bool) (*domain.UserProfile, error) {
			if id != "u2" || active {
				t.Fatalf("unexpected args %s %v", id, active)
			}
			return nil, domain.ErrRoleCeiling
		},
	})
	c, _ := newContext(http.MethodPut, "/v1/users/u2/active", `{"active":false}`, adminID)
	c.SetParamNames("id")
	c.SetParamValues("u2")

	if err := h.SetActive(c); !errors.Is(err, domain.ErrRoleCeiling) {
		t.Fatalf("expected ErrRoleCeiling, got %v", err)
	}
}

// --- Audit ---

func TestAuditHandler_CapsLimit(t *testing.T) {
	reader := &stubAuditReader{}
	h := NewAuditHandler(reader)
	c, rec := newContext(http.MethodGet, "/v1/audit?entity=client&entity_id=c1&limit=5000", "", adminID)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if reader.limit != maxAuditPage {
		t.Fatalf("expected limit %d, got %d", maxAuditPage, reader.limit)
	}
	var resp auditListResponse
	decode(t, rec, &resp)
	if len(resp.Items) != 1 || resp.Items[0].EntityID != "c1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

// --- Health ---

func TestReadinessHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	c, rec := newContext(http.MethodGet, "/health/ready", "", domain.Identity{})
	if err := NewReadinessHandler(map[string]Check{"mongodb": ok, "audit": ok}).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, rec = newContext(http.MethodGet, "/health/ready", "", domain.Identity{})
	if err := NewReadinessHandler(map[string]Check{"mongodb": ok, "redis": down}).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp readinessResponse
	decode(t, rec, &resp)
	if rec.Code != http.StatusServiceUnavailable || resp.Status != "degraded" || resp.Dependencies["redis"].Status != "unhealthy" {
		t.Fatalf("unexpected readiness: %d %+v", rec.Code, resp)
	}
}
