package authz

import (
	"slices"
	"testing"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

func accounting() *Evaluator { return NewEvaluator(MustRegistry(AccountingFirm())) }

// ---------------------------------------------------------------------------
// Menus
// ---------------------------------------------------------------------------

func TestVisibleMenus_PerRole(t *testing.T) {
	e := accounting()
	cases := map[domain.Role][]domain.MenuID{
		domain.RoleTrainee: {
			domain.MenuDashboard, domain.MenuClients, domain.MenuTasks,
			domain.MenuCalendar, domain.MenuDocuments,
		},
		domain.RoleEmployee: {
			domain.MenuDashboard, domain.MenuClients, domain.MenuTasks,
			domain.MenuCalendar, domain.MenuDocuments, domain.MenuInvoices,
			domain.MenuIdentifiants,
		},
		domain.RoleAdmin: {
			domain.MenuDashboard, domain.MenuClients, domain.MenuTasks,
			domain.MenuCalendar, domain.MenuDocuments, domain.MenuInvoices,
			domain.MenuIdentifiants, domain.MenuEmployees, domain.MenuUsers,
			domain.MenuSettings,
		},
		domain.RoleSuperAdmin: domain.AllMenus(),
	}
	for role, want := range cases {
		if got := e.VisibleMenus(role); !slices.Equal(got, want) {
			t.Errorf("%s: expected %v, got %v", role, want, got)
		}
	}
}

func TestCanView_UsersMenu(t *testing.T) {
	e := accounting()
	if e.CanView(domain.RoleTrainee, domain.MenuUsers) {
		t.Error("trainee must not see the users menu")
	}
	if !e.CanView(domain.RoleAdmin, domain.MenuUsers) {
		t.Error("admin must see the users menu")
	}
}

// ---------------------------------------------------------------------------
// Total evaluation
// ---------------------------------------------------------------------------

func TestEvaluator_EmptyRoleDeniesEverything(t *testing.T) {
	for _, e := range []*Evaluator{accounting(), nil, NewEvaluator(nil)} {
		for _, m := range domain.AllMenus() {
			if e.CanView("", m) {
				t.Errorf("empty role sees %s", m)
			}
		}
		for _, f := range domain.AllFieldKinds() {
			if e.CanViewSecret("", f) {
				t.Errorf("empty role sees %s secrets", f)
			}
		}
		for _, a := range domain.AllActions() {
			for _, ent := range domain.AllEntities() {
				if e.CanPerform("", a, ent) {
					t.Errorf("empty role may %s %s", a, ent)
				}
			}
		}
		if e.CanAssignRole("", domain.RoleTrainee) {
			t.Error("empty role may assign roles")
		}
	}
}

func TestEvaluator_HigherRoleHoldsEverythingLowerRoleHolds(t *testing.T) {
	e := accounting()
	roles := e.Registry().Roles()
	for i := 1; i < len(roles); i++ {
		lo, hi := roles[i-1], roles[i]
		for _, m := range domain.AllMenus() {
			if e.CanView(lo, m) && !e.CanView(hi, m) {
				t.Errorf("%s sees %s but %s does not", lo, m, hi)
			}
		}
		for _, f := range domain.AllFieldKinds() {
			if e.CanViewSecret(lo, f) && !e.CanViewSecret(hi, f) {
				t.Errorf("%s sees %s but %s does not", lo, f, hi)
			}
		}
		for _, a := range domain.AllActions() {
			for _, ent := range domain.AllEntities() {
				if e.CanPerform(lo, a, ent) && !e.CanPerform(hi, a, ent) {
					t.Errorf("%s may %s %s but %s may not", lo, a, ent, hi)
				}
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Secrets and actions
// ---------------------------------------------------------------------------

func TestCanViewSecret(t *testing.T) {
	e := accounting()
	cases := map[domain.Role]bool{
		domain.RoleTrainee:    false,
		domain.RoleEmployee:   false,
		domain.RoleAdmin:      true,
		domain.RoleSuperAdmin: true,
	}
	for role, want := range cases {
		for _, f := range domain.AllFieldKinds() {
			if got := e.CanViewSecret(role, f); got != want {
				t.Errorf("%s/%s: expected %v, got %v", role, f, want, got)
			}
		}
	}
}

func TestCanPerform(t *testing.T) {
	e := accounting()
	cases := []struct {
		role   domain.Role
		action domain.Action
		entity domain.EntityKind
		want   bool
	}{
		{domain.RoleTrainee, domain.ActionView, domain.EntityClient, true},
		{domain.RoleTrainee, domain.ActionCreate, domain.EntityClient, false},
		{domain.RoleTrainee, domain.ActionUpdate, domain.EntityTask, true},
		{domain.RoleTrainee, domain.ActionView, domain.EntityInvoice, false},
		{domain.RoleEmployee, domain.ActionCreate, domain.EntityClient, true},
		{domain.RoleEmployee, domain.ActionDelete, domain.EntityClient, false},
		{domain.RoleEmployee, domain.ActionCreate, domain.EntityInvoice, true},
		{domain.RoleAdmin, domain.ActionDelete, domain.EntityClient, true},
		{domain.RoleAdmin, domain.ActionCreate, domain.EntityUser, true},
		{domain.RoleAdmin, domain.ActionDelete, domain.EntityUser, false},
		{domain.RoleSuperAdmin, domain.ActionDelete, domain.EntityUser, true},
		{"guest", domain.ActionView, domain.EntityClient, false},
	}
	for _, tc := range cases {
		if got := e.CanPerform(tc.role, tc.action, tc.entity); got != tc.want {
			t.Errorf("%s %s %s: expected %v, got %v", tc.role, tc.action, tc.entity, tc.want, got)
		}
	}
}

// ---------------------------------------------------------------------------
// Role ceiling
// ---------------------------------------------------------------------------

func TestCanAssignRole_AdminCeiling(t *testing.T) {
	e := accounting()
	if !e.CanAssignRole(domain.RoleAdmin, domain.RoleEmployee) {
		t.Error("admin must be able to authorize an employee")
	}
	if !e.CanAssignRole(domain.RoleAdmin, domain.RoleTrainee) {
		t.Error("admin must be able to authorize a trainee")
	}
	if e.CanAssignRole(domain.RoleAdmin, domain.RoleAdmin) {
		t.Error("admin must not authorize another admin")
	}
	if e.CanAssignRole(domain.RoleAdmin, domain.RoleSuperAdmin) {
		t.Error("admin must not authorize a superadmin")
	}
	for _, r := range e.Registry().Roles() {
		if !e.CanAssignRole(domain.RoleSuperAdmin, r) {
			t.Errorf("superadmin must be able to assign %s", r)
		}
	}
	if e.CanAssignRole(domain.RoleEmployee, domain.RoleTrainee) {
		t.Error("employee must not assign roles")
	}
}

func TestFuelStation_SameTiersDifferentTags(t *testing.T) {
	e := NewEvaluator(MustRegistry(FuelStation()))
	if !e.CanView(domain.RoleResponsable, domain.MenuUsers) {
		t.Error("responsable must see the users menu")
	}
	if e.CanView(domain.RolePompiste, domain.MenuInvoices) {
		t.Error("pompiste must not see invoices")
	}
	if !e.CanAssignRole(domain.RoleResponsable, domain.RoleResponsable) {
		t.Error("responsable may authorize up to responsable")
	}
	if e.CanAssignRole(domain.RoleResponsable, domain.RoleGerant) {
		t.Error("responsable must not authorize a gerant")
	}
	if e.CanView(domain.RoleAdmin, domain.MenuClients) {
		t.Error("accounting tags must not resolve in the fuel variant")
	}
}
