package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cabinet-comptable/backoffice/internal/api/middleware"
	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

// --- helpers ---

var (
	adminID    = domain.Identity{UserID: "u-admin", Email: "admin@cabinet.ma", Role: domain.RoleAdmin}
	employeeID = domain.Identity{UserID: "u-emp", Email: "emp@cabinet.ma", Role: domain.RoleEmployee}
)

func newContext(method, target, body string, id domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id.Authenticated() {
		c.Set(middleware.IdentityKey, id)
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, rec.Body.String())
	}
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

// --- stub ---

type stubClientService struct {
	searchFn      func(ctx context.Context, actor domain.Identity, term string) ([]*domain.Client, error)
	getFn         func(ctx context.Context, actor domain.Identity, id string) (*domain.Client, error)
	createFn      func(ctx context.Context, actor domain.Identity, in domain.ClientInput) (*domain.Client, error)
	updateFn      func(ctx context.Context, actor domain.Identity, id string, p domain.ClientPatch) (*domain.Client, error)
	deleteFn      func(ctx context.Context, actor domain.Identity, id string) error
	credentialsFn func(ctx context.Context, actor domain.Identity, id string, r domain.RevealState) (*domain.ClientCredentialsView, error)
}

func (s *stubClientService) List(ctx context.Context, actor domain.Identity) ([]*domain.Client, error) {
	return s.searchFn(ctx, actor, "")
}
func (s *stubClientService) Search(ctx context.Context, actor domain.Identity, term string) ([]*domain.Client, error) {
	return s.searchFn(ctx, actor, term)
}
func (s *stubClientService) Get(ctx context.Context, actor domain.Identity, id string) (*domain.Client, error) {
	return s.getFn(ctx, actor, id)
}
func (s *stubClientService) Create(ctx context.Context, actor domain.Identity, in domain.ClientInput) (*domain.Client, error) {
	return s.createFn(ctx, actor, in)
}
func (s *stubClientService) Update(ctx context.Context, actor domain.Identity, id string, p domain.ClientPatch) (*domain.Client, error) {
	return s.updateFn(ctx, actor, id, p)
}
func (s *stubClientService) Delete(ctx context.Context, actor domain.Identity, id string) error {
	return s.deleteFn(ctx, actor, id)
}
func (s *stubClientService) Credentials(ctx context.Context, actor domain.Identity, id string, r domain.RevealState) (*domain.ClientCredentialsView, error) {
	return s.credentialsFn(ctx, actor, id, r)
}

func sampleClient() *domain.Client {
	return &domain.Client{
		ID:            "c1",
		NomCommercial: "Atlas Conseil",
		RaisonSociale: "Atlas Conseil SARL",
		TypeClient:    domain.ClientSARL,
		Statut:        domain.ClientActive,
		Credentials: domain.Credentials{
			IdentifiantDGI: "atlas-dgi",
			MotDePasseDGI:  "must-not-leak",
		},
		CreatedAt: time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC),
	}
}

// --- List ---

func TestClientHandler_List_PassesSearchTerm(t *testing.T) {
	var gotTerm string
	h := NewClientHandler(&stubClientService{
		searchFn: func(_ context.Context, actor domain.Identity, term string) ([]*domain.Client, error) {
			if actor != employeeID {
				t.Fatalf("unexpected actor: %+v", actor)
			}
			gotTerm = term
			return []*domain.Client{sampleClient()}, nil
		},
	})
	c, rec := newContext(http.MethodGet, "/v1/clients?q=atlas", "", employeeID)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gotTerm != "atlas" {
		t.Fatalf("expected term atlas, got %q", gotTerm)
	}
	var resp clientListResponse
	decode(t, rec, &resp)
	if resp.Total != 1 || resp.Items[0].NomCommercial != "Atlas Conseil" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "must-not-leak") || strings.Contains(rec.Body.String(), "mot_de_passe") {
		t.Fatalf("password leaked into list response: %s", rec.Body.String())
	}
}

func TestClientHandler_List_RequiresIdentity(t *testing.T) {
	h := NewClientHandler(&stubClientService{})
	c, _ := newContext(http.MethodGet, "/v1/clients", "", domain.Identity{})

	if code := httpCode(t, h.List(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

// --- Create ---

func TestClientHandler_Create_Success(t *testing.T) {
	h := NewClientHandler(&stubClientService{
		createFn: func(_ context.Context, _ domain.Identity, in domain.ClientInput) (*domain.Client, error) {
			if in.NomCommercial != "Atlas Conseil" || in.Credentials.MotDePasseDGI != "pw" || in.Address.Ville != "Rabat" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return sampleClient(), nil
		},
	})
	c, rec := newContext(http.MethodPost, "/v1/clients",
		`{"nom_commercial":"Atlas Conseil","ville":"Rabat","mot_de_passe_dgi":"pw"}`, employeeID)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/v1/clients/c1" {
		t.Fatalf("unexpected location %q", loc)
	}
	var resp clientResponse
	decode(t, rec, &resp)
	if resp.Links.Credentials != "/v1/clients/c1/credentials" {
		t.Fatalf("unexpected links: %+v", resp.Links)
	}
}

func TestClientHandler_Create_MissingName(t *testing.T) {
	h := NewClientHandler(&stubClientService{
		createFn: func(context.Context, domain.Identity, domain.ClientInput) (*domain.Client, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	})
	c, _ := newContext(http.MethodPost, "/v1/clients", `{"ville":"Rabat"}`, employeeID)

	err := h.Create(c)
	if code := httpCode(t, err); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "nom_commercial" {
		t.Fatalf("expected validation error on nom_commercial, got %v", err)
	}
}

func TestClientHandler_Create_InvalidJSON(t *testing.T) {
	h := NewClientHandler(&stubClientService{})
	c, _ := newContext(http.MethodPost, "/v1/clients", `{"nom_commercial":`, employeeID)

	if code := httpCode(t, h.Create(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

// --- Update ---

func TestClientHandler_Update_OnlySentFields(t *testing.T) {
	h := NewClientHandler(&stubClientService{
		updateFn: func(_ context.Context, _ domain.Identity, id string, p domain.ClientPatch) (*domain.Client, error) {
			if id != "c1" {
				t.Fatalf("unexpected id %q", id)
			}
			if p.Ville == nil || *p.Ville != "Fès" {
				t.Fatalf("ville not patched: %+v", p)
			}
			if p.Statut == nil || *p.Statut != domain.ClientSuspended {
				t.Fatalf("statut not patched: %+v", p)
			}
			if p.NomCommercial != nil || p.MotDePasseDGI != nil {
				t.Fatalf("absent fields must stay nil: %+v", p)
			}
			return sampleClient(), nil
		},
	})
	c, rec := newContext(http.MethodPatch, "/v1/clients/c1", `{"ville":"Fès","statut":"Suspendu"}`, employeeID)
	c.SetParamNames("id")
	c.SetParamValues("c1")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestClientHandler_Update_PropagatesInFlight(t *testing.T) {
	h := NewClientHandler(&stubClientService{
		updateFn: func(context.Context, domain.Identity, string, domain.ClientPatch) (*domain.Client, error) {
			return nil, domain.ErrMutationInFlight
		},
	})
	c, _ := newContext(http.MethodPatch, "/v1/clients/c1", `{"notes":"x"}`, employeeID)
	c.SetParamNames("id")
	c.SetParamValues("c1")

	if err := h.Update(c); !errors.Is(err, domain.ErrMutationInFlight) {
		t.Fatalf("expected ErrMutationInFlight, got %v", err)
	}
}

// --- Delete ---

func TestClientHandler_Delete(t *testing.T) {
	called := false
	h := NewClientHandler(&stubClientService{
		deleteFn: func(_ context.Context, actor domain.Identity, id string) error {
			called = actor == adminID && id == "c1"
			return nil
		},
	})
	c, rec := newContext(http.MethodDelete, "/v1/clients/c1", "", adminID)
	c.SetParamNames("id")
	c.SetParamValues("c1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called || rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 after delete, got %d", rec.Code)
	}
}

// --- Credentials ---

func TestClientHandler_Credentials_ParsesReveal(t *testing.T) {
	h := NewClientHandler(&stubClientService{
		credentialsFn: func(_ context.Context, _ domain.Identity, id string, r domain.RevealState) (*domain.ClientCredentialsView, error) {
			if !r.Revealed(id, domain.SecretDGIPassword) {
				t.Fatalf("dgi should be revealed: %+v", r)
			}
			if r.Revealed(id, domain.SecretDAMANCOMPassword) {
				t.Fatalf("damancom should stay masked: %+v", r)
			}
			return &domain.ClientCredentialsView{
				ClientID:      id,
				MotDePasseDGI: domain.FieldView{Display: "pw", Revealable: true, Copyable: true},
			}, nil
		},
	})
	c, rec := newContext(http.MethodGet, "/v1/clients/c1/credentials?reveal=DGI,unknown", "", adminID)
	c.SetParamNames("id")
	c.SetParamValues("c1")

	if err := h.Credentials(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var view domain.ClientCredentialsView
	decode(t, rec, &view)
	if !view.MotDePasseDGI.Copyable || view.MotDePasseDGI.Display != "pw" {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestParseReveal(t *testing.T) {
	s := parseReveal("c9", " damancom , mot_de_passe_dgi,,")
	if !s.Revealed("c9", domain.SecretDAMANCOMPassword) || !s.Revealed("c9", domain.SecretDGIPassword) {
		t.Fatalf("unexpected state: %+v", s)
	}
	if len(parseReveal("c9", "")) != 0 {
		t.Fatalf("empty reveal must be empty state")
	}
}
