package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/cabinet-comptable/backoffice/internal/core/authz"
	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

func evaluator() *authz.Evaluator {
	return authz.NewEvaluator(authz.MustRegistry(authz.AccountingFirm()))
}

func runGate(t *testing.T, mw echo.MiddlewareFunc, role domain.Role) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if role != "" {
		c.Set(IdentityKey, domain.Identity{UserID: "u1", Role: role})
	}

	called := false
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, called
}

func TestRequirePermission_Allows(t *testing.T) {
	rec, called := runGate(t, RequirePermission(evaluator(), domain.ActionDelete, domain.EntityClient), domain.RoleAdmin)
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequirePermission_Denies(t *testing.T) {
	rec, called := runGate(t, RequirePermission(evaluator(), domain.ActionDelete, domain.EntityClient), domain.RoleEmployee)
	if called {
		t.Fatalf("next handler should not be called")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if rec.Body.String() != "{\"error\":\"forbidden\"}\n" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestRequirePermission_NoIdentity(t *testing.T) {
	rec, called := runGate(t, RequirePermission(evaluator(), domain.ActionView, domain.EntityClient), "")
	if called || rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireMenu(t *testing.T) {
	mw := RequireMenu(evaluator(), domain.MenuInvoices)

	if _, called := runGate(t, mw, domain.RoleTrainee); called {
		t.Fatalf("trainee must not see invoices")
	}
	if _, called := runGate(t, mw, domain.RoleEmployee); !called {
		t.Fatalf("employee must see invoices")
	}
}
