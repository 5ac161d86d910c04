package authz

import (
	"fmt"
	"strings"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

func perm(a domain.Action, e domain.EntityKind) domain.Permission {
	return domain.Permission{Action: a, Entity: e}
}

// Tier grants shared by both variants, lowest tier first.
var (
	tierBase = Grant{
		Menus: []domain.MenuID{
			domain.MenuDashboard, domain.MenuClients, domain.MenuTasks,
			domain.MenuCalendar, domain.MenuDocuments,
		},
		Actions: []domain.Permission{
			perm(domain.ActionView, domain.EntityClient),
			perm(domain.ActionView, domain.EntityTask),
			perm(domain.ActionUpdate, domain.EntityTask),
			perm(domain.ActionView, domain.EntityDeadline),
		},
	}
	tierStaff = Grant{
		Menus: []domain.MenuID{domain.MenuInvoices, domain.MenuIdentifiants},
		Actions: []domain.Permission{
			perm(domain.ActionCreate, domain.EntityClient),
			perm(domain.ActionUpdate, domain.EntityClient),
			perm(domain.ActionCreate, domain.EntityTask),
			perm(domain.ActionView, domain.EntityInvoice),
			perm(domain.ActionCreate, domain.EntityInvoice),
			perm(domain.ActionCreate, domain.EntityDeadline),
		},
	}
	tierManager = Grant{
		Menus:   []domain.MenuID{domain.MenuEmployees, domain.MenuUsers, domain.MenuSettings},
		Secrets: []domain.FieldKind{domain.FieldCredential, domain.FieldFinancial},
		Actions: []domain.Permission{
			perm(domain.ActionDelete, domain.EntityClient),
			perm(domain.ActionDelete, domain.EntityTask),
			perm(domain.ActionUpdate, domain.EntityInvoice),
			perm(domain.ActionDelete, domain.EntityInvoice),
			perm(domain.ActionUpdate, domain.EntityDeadline),
			perm(domain.ActionDelete, domain.EntityDeadline),
			perm(domain.ActionView, domain.EntityUser),
			perm(domain.ActionCreate, domain.EntityUser),
			perm(domain.ActionUpdate, domain.EntityUser),
		},
	}
	tierOwner = Grant{
		Menus: []domain.MenuID{domain.MenuIntegrations},
		Actions: []domain.Permission{
			perm(domain.ActionDelete, domain.EntityUser),
		},
	}
)

// AccountingFirm is the default variant: trainee < employee < admin < superadmin.
// An admin may authorize employees and trainees; only a superadmin may
// authorize admins and superadmins.
func AccountingFirm() Table {
	return Table{
		Name:  "accounting",
		Roles: []domain.Role{domain.RoleTrainee, domain.RoleEmployee, domain.RoleAdmin, domain.RoleSuperAdmin},
		Grants: map[domain.Role]Grant{
			domain.RoleTrainee:    tierBase,
			domain.RoleEmployee:   tierStaff,
			domain.RoleAdmin:      tierManager,
			domain.RoleSuperAdmin: tierOwner,
		},
		Manage: map[domain.Role][]domain.Role{
			domain.RoleAdmin:      {domain.RoleTrainee, domain.RoleEmployee},
			domain.RoleSuperAdmin: {domain.RoleAdmin, domain.RoleSuperAdmin},
		},
	}
}

// FuelStation is the station-service variant: pompiste < caissier <
// responsable < gerant. A responsable may authorize up to responsable; only
// a gerant may authorize another gerant.
func FuelStation() Table {
	return Table{
		Name:  "fuel",
		Roles: []domain.Role{domain.RolePompiste, domain.RoleCaissier, domain.RoleResponsable, domain.RoleGerant},
		Grants: map[domain.Role]Grant{
			domain.RolePompiste:    tierBase,
			domain.RoleCaissier:    tierStaff,
			domain.RoleResponsable: tierManager,
			domain.RoleGerant:      tierOwner,
		},
		Manage: map[domain.Role][]domain.Role{
			domain.RoleResponsable: {domain.RolePompiste, domain.RoleCaissier, domain.RoleResponsable},
			domain.RoleGerant:      {domain.RoleGerant},
		},
	}
}

// TableByName resolves the ROLE_VARIANT setting.
func TableByName(name string) (Table, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "accounting", "cabinet":
		return AccountingFirm(), nil
	case "fuel", "station":
		return FuelStation(), nil
	}
	return Table{}, fmt.Errorf("authz: unknown role variant %q", name)
}
