package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

// --- stubs ---

type stubSessions struct {
	revoked map[string]bool
	cutoff  map[string]time.Time
}

func (s *stubSessions) Revoke(context.Context, string, time.Time) error { return nil }
func (s *stubSessions) IsRevoked(_ context.Context, id string) (bool, error) {
	return s.revoked[id], nil
}
func (s *stubSessions) RevokeUser(context.Context, string, time.Time) error { return nil }
func (s *stubSessions) RevokedBefore(_ context.Context, userID string) (time.Time, error) {
	return s.cutoff[userID], nil
}

func signToken(t *testing.T, secret string, iat time.Time, extra jwt.MapClaims) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   "u1",
		"email": "alice@cabinet.ma",
		"role":  "admin",
		"jti":   "tok-1",
		"iat":   float64(iat.UnixMilli()) / 1000,
		"exp":   iat.Add(time.Hour).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runAuth(t *testing.T, header string, sessions *stubSessions) (*httptest.ResponseRecorder, bool, domain.Identity) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	var got domain.Identity
	var mw echo.MiddlewareFunc
	if sessions == nil {
		mw = Auth("secret", nil)
	} else {
		mw = Auth("secret", sessions)
	}
	handler := mw(func(c echo.Context) error {
		called = true
		got = IdentityFrom(c)
		if domain.IdentityFrom(c.Request().Context()) != got {
			t.Fatalf("identity not propagated to request context")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called, got
}

// --- Auth ---

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := signToken(t, "secret", time.Now(), nil)

	rec, called, id := runAuth(t, "Bearer "+token, &stubSessions{})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if id.UserID != "u1" || id.Role != domain.RoleAdmin || id.Email != "alice@cabinet.ma" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestAuthMiddleware_NoSessionStore(t *testing.T) {
	rec, called, _ := runAuth(t, "Bearer "+signToken(t, "secret", time.Now(), nil), nil)
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	rec, called, _ := runAuth(t, "", &stubSessions{})
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	rec, called, _ := runAuth(t, "Token abc", &stubSessions{})
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	rec, called, _ := runAuth(t, "Bearer not-a-token", &stubSessions{})
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", time.Now(), nil)
	rec, called, _ := runAuth(t, "Bearer "+token, &stubSessions{})
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	token := signToken(t, "secret", time.Now().Add(-2*time.Hour), nil)
	rec, called, _ := runAuth(t, "Bearer "+token, &stubSessions{})
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingRole(t *testing.T) {
	token := signToken(t, "secret", time.Now(), jwt.MapClaims{"role": ""})
	rec, called, _ := runAuth(t, "Bearer "+token, &stubSessions{})
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RevokedToken(t *testing.T) {
	token := signToken(t, "secret", time.Now(), nil)
	rec, called, _ := runAuth(t, "Bearer "+token, &stubSessions{revoked: map[string]bool{"tok-1": true}})
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_UserRevokedAfterIssue(t *testing.T) {
	issued := time.Now().Add(-10 * time.Minute)
	token := signToken(t, "secret", issued, nil)

	rec, called, _ := runAuth(t, "Bearer "+token, &stubSessions{cutoff: map[string]time.Time{"u1": time.Now()}})
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	// a token issued after the cut-off is accepted
	rec, called, _ = runAuth(t, "Bearer "+token, &stubSessions{cutoff: map[string]time.Time{"u1": issued.Add(-time.Minute)}})
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_CutOffWithinSameSecond(t *testing.T) {
	second := time.Now().Add(-time.Minute).Truncate(time.Second)
	cutoff := second.Add(400 * time.Millisecond)
	sessions := &stubSessions{cutoff: map[string]time.Time{"u1": cutoff}}

	before := signToken(t, "secret", second.Add(100*time.Millisecond), nil)
	rec, called, _ := runAuth(t, "Bearer "+before, sessions)
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("token issued before the cut-off: expected 401, got %d", rec.Code)
	}

	after := signToken(t, "secret", second.Add(700*time.Millisecond), nil)
	rec, called, _ = runAuth(t, "Bearer "+after, sessions)
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("token issued after the cut-off in the same second: expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_WholeSecondIssuedAt(t *testing.T) {
	issued := time.Now().Add(-time.Minute).Truncate(time.Second)
	token := signToken(t, "secret", issued, jwt.MapClaims{"iat": issued.Unix()})

	rec, called, _ := runAuth(t, "Bearer "+token, &stubSessions{cutoff: map[string]time.Time{"u1": issued.Add(-time.Millisecond)}})
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
