package authz

import (
	"strings"
	"testing"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

func TestNewRegistry_BuiltinTablesAreValid(t *testing.T) {
	for _, tbl := range []Table{AccountingFirm(), FuelStation()} {
		if _, err := NewRegistry(tbl); err != nil {
			t.Fatalf("%s: unexpected error: %v", tbl.Name, err)
		}
	}
}

func TestRegistry_BundlesGrowAlongHierarchy(t *testing.T) {
	for _, tbl := range []Table{AccountingFirm(), FuelStation()} {
		reg := MustRegistry(tbl)
		roles := reg.Roles()
		for i := 0; i < len(roles); i++ {
			for j := i + 1; j < len(roles); j++ {
				if !reg.CapabilitiesFor(roles[i]).SubsetOf(reg.CapabilitiesFor(roles[j])) {
					t.Errorf("%s: %s is not contained in %s", tbl.Name, roles[i], roles[j])
				}
			}
		}
	}
}

func TestNewRegistry_RejectsManagingHigherRole(t *testing.T) {
	tbl := AccountingFirm()
	tbl.Manage[domain.RoleAdmin] = append(tbl.Manage[domain.RoleAdmin], domain.RoleSuperAdmin)

	_, err := NewRegistry(tbl)
	if err == nil || !strings.Contains(err.Error(), "higher role") {
		t.Fatalf("expected higher role error, got %v", err)
	}
}

func TestNewRegistry_RejectsUnknownAndDuplicateRoles(t *testing.T) {
	cases := map[string]Table{
		"no roles": {Name: "empty"},
		"duplicate": {
			Name:  "dup",
			Roles: []domain.Role{domain.RoleTrainee, domain.RoleTrainee},
		},
		"empty tag": {
			Name:  "blank",
			Roles: []domain.Role{""},
		},
		"unknown grant": {
			Name:   "grant",
			Roles:  []domain.Role{domain.RoleTrainee},
			Grants: map[domain.Role]Grant{domain.RoleGerant: tierBase},
		},
		"unknown managed": {
			Name:   "manage",
			Roles:  []domain.Role{domain.RoleTrainee},
			Manage: map[domain.Role][]domain.Role{domain.RoleTrainee: {domain.RoleGerant}},
		},
	}
	for name, tbl := range cases {
		if _, err := NewRegistry(tbl); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestRegistry_UnknownRoleGetsEmptyBundle(t *testing.T) {
	reg := MustRegistry(AccountingFirm())
	for _, role := range []domain.Role{"", "guest", domain.RoleGerant} {
		c := reg.CapabilitiesFor(role)
		if len(c.Menus()) != 0 || len(c.Permissions()) != 0 || len(c.SecretFields()) != 0 {
			t.Errorf("role %q: expected empty bundle", role)
		}
		if reg.Known(role) {
			t.Errorf("role %q should not be known", role)
		}
	}
}

func TestTableByName(t *testing.T) {
	cases := map[string]string{
		"":           "accounting",
		"accounting": "accounting",
		"Fuel":       "fuel",
		" station ":  "fuel",
	}
	for in, want := range cases {
		tbl, err := TableByName(in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", in, err)
		}
		if tbl.Name != want {
			t.Errorf("%q: expected %s, got %s", in, want, tbl.Name)
		}
	}
	if _, err := TableByName("bakery"); err == nil {
		t.Fatal("expected error for unknown variant")
	}
}
