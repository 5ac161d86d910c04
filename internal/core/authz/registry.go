// Package authz holds the role registry and the authorization evaluator.
//
// A Registry is built once from a Table and never mutated. Every role's
// bundle is the union of its own grants and the grants of every role below
// it, so capabilities only grow along the hierarchy.
package authz

import (
	"fmt"
	"slices"

	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

// Grant lists what a role adds on top of the roles below it.
type Grant struct {
	Menus   []domain.MenuID
	Secrets []domain.FieldKind
	Actions []domain.Permission
}

// Table describes one deployment variant.
type Table struct {
	Name string
	// Roles is ordered from least to most privileged.
	Roles  []domain.Role
	Grants map[domain.Role]Grant
	// Manage lists the roles each role may assign when creating or editing users.
	Manage map[domain.Role][]domain.Role
}

// Capabilities is the immutable bundle a role resolves to.
type Capabilities struct {
	menus   map[domain.MenuID]struct{}
	secrets map[domain.FieldKind]struct{}
	actions map[domain.Permission]struct{}
	manage  map[domain.Role]struct{}
}

func newCapabilities() Capabilities {
	return Capabilities{
		menus:   map[domain.MenuID]struct{}{},
		secrets: map[domain.FieldKind]struct{}{},
		actions: map[domain.Permission]struct{}{},
		manage:  map[domain.Role]struct{}{},
	}
}

func (c Capabilities) HasMenu(m domain.MenuID) bool {
	_, ok := c.menus[m]
	return ok
}

func (c Capabilities) HasSecret(f domain.FieldKind) bool {
	_, ok := c.secrets[f]
	return ok
}

func (c Capabilities) Can(p domain.Permission) bool {
	_, ok := c.actions[p]
	return ok
}

func (c Capabilities) CanManage(r domain.Role) bool {
	_, ok := c.manage[r]
	return ok
}

// SecretFieldAccess reports whether credential values may be revealed.
func (c Capabilities) SecretFieldAccess() bool {
	return c.HasSecret(domain.FieldCredential)
}

// Menus returns the granted menus in display order.
func (c Capabilities) Menus() []domain.MenuID {
	out := make([]domain.MenuID, 0, len(c.menus))
	for _, m := range domain.AllMenus() {
		if c.HasMenu(m) {
			out = append(out, m)
		}
	}
	return out
}

// Permissions returns the granted permissions sorted by their string form.
func (c Capabilities) Permissions() []string {
	out := make([]string, 0, len(c.actions))
	for p := range c.actions {
		out = append(out, p.String())
	}
	slices.Sort(out)
	return out
}

// SecretFields returns the granted secret field kinds.
func (c Capabilities) SecretFields() []domain.FieldKind {
	out := make([]domain.FieldKind, 0, len(c.secrets))
	for _, f := range domain.AllFieldKinds() {
		if c.HasSecret(f) {
			out = append(out, f)
		}
	}
	return out
}

// SubsetOf reports whether every capability of c is also held by other.
func (c Capabilities) SubsetOf(other Capabilities) bool {
	for m := range c.menus {
		if !other.HasMenu(m) {
			return false
		}
	}
	for f := range c.secrets {
		if !other.HasSecret(f) {
			return false
		}
	}
	for p := range c.actions {
		if !other.Can(p) {
			return false
		}
	}
	for r := range c.manage {
		if !other.CanManage(r) {
			return false
		}
	}
	return true
}

func (c Capabilities) clone() Capabilities {
	out := newCapabilities()
	for k := range c.menus {
		out.menus[k] = struct{}{}
	}
	for k := range c.secrets {
		out.secrets[k] = struct{}{}
	}
	for k := range c.actions {
		out.actions[k] = struct{}{}
	}
	for k := range c.manage {
		out.manage[k] = struct{}{}
	}
	return out
}

// Registry maps role tags to capability bundles for one variant.
type Registry struct {
	name    string
	roles   []domain.Role
	rank    map[domain.Role]int
	bundles map[domain.Role]Capabilities
}

// NewRegistry builds a registry from t and verifies it: roles are unique,
// every grant and managed role refers to a role of the table, no role may
// assign a role above itself, and each bundle is contained in the next one.
func NewRegistry(t Table) (*Registry, error) {
	if len(t.Roles) == 0 {
		return nil, fmt.Errorf("authz: variant %q has no roles", t.Name)
	}

	reg := &Registry{
		name:    t.Name,
		roles:   slices.Clone(t.Roles),
		rank:    make(map[domain.Role]int, len(t.Roles)),
		bundles: make(map[domain.Role]Capabilities, len(t.Roles)),
	}
	for i, r := range t.Roles {
		if r == "" {
			return nil, fmt.Errorf("authz: variant %q has an empty role tag", t.Name)
		}
		if _, dup := reg.rank[r]; dup {
			return nil, fmt.Errorf("authz: variant %q lists role %q twice", t.Name, r)
		}
		reg.rank[r] = i
	}
	for r := range t.Grants {
		if _, ok := reg.rank[r]; !ok {
			return nil, fmt.Errorf("authz: variant %q grants to unknown role %q", t.Name, r)
		}
	}

	acc := newCapabilities()
	for _, r := range t.Roles {
		g := t.Grants[r]
		for _, m := range g.Menus {
			acc.menus[m] = struct{}{}
		}
		for _, f := range g.Secrets {
			acc.secrets[f] = struct{}{}
		}
		for _, p := range g.Actions {
			acc.actions[p] = struct{}{}
		}
		for _, m := range t.Manage[r] {
			rank, ok := reg.rank[m]
			if !ok {
				return nil, fmt.Errorf("authz: role %q manages unknown role %q", r, m)
			}
			if rank > reg.rank[r] {
				return nil, fmt.Errorf("authz: role %q may not assign higher role %q", r, m)
			}
			acc.manage[m] = struct{}{}
		}
		reg.bundles[r] = acc.clone()
	}

	for i := 1; i < len(reg.roles); i++ {
		lower, higher := reg.roles[i-1], reg.roles[i]
		if !reg.bundles[lower].SubsetOf(reg.bundles[higher]) {
			return nil, fmt.Errorf("authz: role %q holds capabilities %q lacks", lower, higher)
		}
	}
	return reg, nil
}

// MustRegistry is NewRegistry for static tables; it panics on an invalid table.
func MustRegistry(t Table) *Registry {
	reg, err := NewRegistry(t)
	if err != nil {
		panic(err)
	}
	return reg
}

// Variant returns the name of the table the registry was built from.
func (r *Registry) Variant() string {
	if r == nil {
		return ""
	}
	return r.name
}

// Roles returns the roles from least to most privileged.
func (r *Registry) Roles() []domain.Role {
	if r == nil {
		return nil
	}
	return slices.Clone(r.roles)
}

// Known reports whether role belongs to this variant.
func (r *Registry) Known(role domain.Role) bool {
	_, ok := r.Rank(role)
	return ok
}

// Rank returns the position of role in the hierarchy.
func (r *Registry) Rank(role domain.Role) (int, bool) {
	if r == nil {
		return 0, false
	}
	rank, ok := r.rank[role]
	return rank, ok
}

// CapabilitiesFor returns the bundle of role. Unknown and empty roles get an
// empty bundle, never an error and never a default role.
func (r *Registry) CapabilitiesFor(role domain.Role) Capabilities {
	if r == nil {
		return newCapabilities()
	}
	if c, ok := r.bundles[role]; ok {
		return c
	}
	return newCapabilities()
}
