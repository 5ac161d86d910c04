package service

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cabinet-comptable/backoffice/internal/core/authz"
	"github.com/cabinet-comptable/backoffice/internal/core/domain"
	"github.com/cabinet-comptable/backoffice/internal/infrastructure/memory"
)

type userFixture struct {
	svc      *UserService
	repo     *stubUserRepo
	sessions *memory.SessionStore
	guard    *memory.Guard
	audit    *recordingAudit
}

func newUserFixture(users ...*domain.UserProfile) *userFixture {
	f := &userFixture{
		repo:     newStubUserRepo(users...),
		sessions: memory.NewSessionStore(),
		guard:    memory.NewGuard(),
		audit:    &recordingAudit{},
	}
	f.svc = NewUserService(f.repo, f.sessions, f.guard, evaluator(), &recordingNotifier{}, f.audit, zerolog.Nop())
	f.svc.newID = func() string { return "u-new" }
	return f
}

func TestUserService_Create(t *testing.T) {
	f := newUserFixture()

	u, err := f.svc.Create(context.Background(), admin, domain.NewUserInput{
		Email: "Karim@Cabinet.ma", FullName: "Karim", Role: domain.RoleEmployee,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "karim@cabinet.ma" || !u.IsActive || u.CreatedBy != admin.UserID || u.Registered() {
		t.Fatalf("unexpected profile: %+v", u)
	}
}

func TestUserService_Create_AdminCannotAuthorizeAdmin(t *testing.T) {
	f := newUserFixture()

	_, err := f.svc.Create(context.Background(), admin, domain.NewUserInput{
		Email: "boss@cabinet.ma", FullName: "Boss", Role: domain.RoleAdmin,
	})
	if !errors.Is(err, domain.ErrRoleCeiling) {
		t.Fatalf("expected ErrRoleCeiling, got %v", err)
	}
	if len(f.repo.users) != 0 {
		t.Fatal("no profile must be created")
	}

	if _, err := f.svc.Create(context.Background(), superadmin, domain.NewUserInput{
		Email: "boss@cabinet.ma", FullName: "Boss", Role: domain.RoleAdmin,
	}); err != nil {
		t.Fatalf("superadmin must authorize admins: %v", err)
	}
}

func TestUserService_Create_Refusals(t *testing.T) {
	f := newUserFixture(&domain.UserProfile{ID: "u1", Email: "taken@cabinet.ma", Role: domain.RoleTrainee})
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, employee, domain.NewUserInput{Email: "a@b.ma", FullName: "A", Role: domain.RoleTrainee}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("employee: expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.Create(ctx, admin, domain.NewUserInput{Email: "taken@cabinet.ma", FullName: "A", Role: domain.RoleTrainee}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate: expected ErrConflict, got %v", err)
	}
	if _, err := f.svc.Create(ctx, admin, domain.NewUserInput{Email: "x@cabinet.ma", FullName: "A", Role: "boss"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown role: expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.Create(ctx, admin, domain.NewUserInput{Email: "not-an-email", FullName: "A", Role: domain.RoleTrainee}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad email: expected ErrValidation, got %v", err)
	}
}

func TestUserService_Deactivate_RevokesSessions(t *testing.T) {
	f := newUserFixture(&domain.UserProfile{ID: "u1", Email: "k@cabinet.ma", Role: domain.RoleEmployee, IsActive: true})
	ctx := context.Background()

	u, err := f.svc.SetActive(ctx, admin, "u1", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.IsActive || f.repo.users["u1"].IsActive {
		t.Fatal("user must be inactive")
	}
	if at, _ := f.sessions.RevokedBefore(ctx, "u1"); at.IsZero() {
		t.Fatal("sessions must be revoked")
	}
	if !slices.Contains(f.audit.actions(), domain.AuditDeactivate) {
		t.Errorf("expected deactivate audit, got %v", f.audit.actions())
	}
}

func TestUserService_DeactivateDuringSignUp(t *testing.T) {
	f := newUserFixture(&domain.UserProfile{ID: "u1", Email: "k@cabinet.ma", Role: domain.RoleEmployee, IsActive: true})
	auth := NewAuthService(f.repo, f.sessions, f.guard, authz.MustRegistry(authz.AccountingFirm()), "secret", time.Hour, zerolog.Nop())
	ctx := context.Background()

	f.repo.beforeWrite = func() {
		if _, err := f.svc.SetActive(ctx, admin, "u1", false); !errors.Is(err, domain.ErrMutationInFlight) {
			t.Errorf("deactivation during sign-up: expected ErrMutationInFlight, got %v", err)
		}
	}
	if _, err := auth.SignUp(ctx, "k@cabinet.ma", "motdepasse", "Karim"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if f.guard.Held("user:u1") {
		t.Fatal("guard must be released after sign-up")
	}

	if _, err := f.svc.SetActive(ctx, admin, "u1", false); err != nil {
		t.Fatalf("retried deactivation: %v", err)
	}
	stored := f.repo.users["u1"]
	if stored.IsActive || !stored.Registered() || stored.FullName != "Karim" {
		t.Fatalf("both writes must be kept: %+v", stored)
	}
	if _, err := auth.SignIn(ctx, "k@cabinet.ma", "motdepasse"); !errors.Is(err, domain.ErrUserInactive) {
		t.Fatalf("expected ErrUserInactive, got %v", err)
	}
}

func TestUserService_ScopeRules(t *testing.T) {
	f := newUserFixture(
		&domain.UserProfile{ID: "u-peer", Email: "peer@cabinet.ma", Role: domain.RoleAdmin, IsActive: true},
		&domain.UserProfile{ID: "u1", Email: "k@cabinet.ma", Role: domain.RoleTrainee, IsActive: true},
		&domain.UserProfile{ID: admin.UserID, Email: admin.Email, Role: domain.RoleAdmin, IsActive: true},
	)
	ctx := context.Background()

	if _, err := f.svc.SetActive(ctx, admin, "u-peer", false); !errors.Is(err, domain.ErrRoleCeiling) {
		t.Errorf("admin on admin: expected ErrRoleCeiling, got %v", err)
	}
	if _, err := f.svc.ChangeRole(ctx, admin, "u1", domain.RoleAdmin); !errors.Is(err, domain.ErrRoleCeiling) {
		t.Errorf("promote above ceiling: expected ErrRoleCeiling, got %v", err)
	}
	if _, err := f.svc.ChangeRole(ctx, admin, admin.UserID, domain.RoleSuperAdmin); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("self edit: expected ErrForbidden, got %v", err)
	}
	if f.repo.users["u1"].Role != domain.RoleTrainee {
		t.Fatal("role must be unchanged after refusals")
	}

	u, err := f.svc.ChangeRole(ctx, admin, "u1", domain.RoleEmployee)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != domain.RoleEmployee {
		t.Fatalf("expected employee, got %s", u.Role)
	}
	if !slices.Contains(f.audit.actions(), domain.AuditRoleChange) {
		t.Errorf("expected role change audit, got %v", f.audit.actions())
	}
}

func TestUserService_List_RequiresUserView(t *testing.T) {
	f := newUserFixture(&domain.UserProfile{ID: "u1", Email: "k@cabinet.ma", Role: domain.RoleTrainee, CreatedAt: time.Now()})

	if _, err := f.svc.List(context.Background(), trainee); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	users, err := f.svc.List(context.Background(), admin)
	if err != nil || len(users) != 1 {
		t.Fatalf("expected one user, got %v %v", users, err)
	}
}
