package authz

import "github.com/cabinet-comptable/backoffice/internal/core/domain"

// Evaluator answers capability questions. Every method is total: a nil
// evaluator, an empty role or an unknown role yields false.
type Evaluator struct {
	reg *Registry
}

func NewEvaluator(reg *Registry) *Evaluator {
	return &Evaluator{reg: reg}
}

// Registry exposes the underlying registry.
func (e *Evaluator) Registry() *Registry {
	if e == nil {
		return nil
	}
	return e.reg
}

// Capabilities returns the bundle of role.
func (e *Evaluator) Capabilities(role domain.Role) Capabilities {
	if e == nil {
		return newCapabilities()
	}
	return e.reg.CapabilitiesFor(role)
}

func (e *Evaluator) CanView(role domain.Role, menu domain.MenuID) bool {
	return e.Capabilities(role).HasMenu(menu)
}

func (e *Evaluator) CanViewSecret(role domain.Role, field domain.FieldKind) bool {
	return e.Capabilities(role).HasSecret(field)
}

func (e *Evaluator) CanPerform(role domain.Role, action domain.Action, entity domain.EntityKind) bool {
	return e.Capabilities(role).Can(domain.Permission{Action: action, Entity: entity})
}

// CanAssignRole reports whether actor may give target to a user.
func (e *Evaluator) CanAssignRole(actor, target domain.Role) bool {
	return e.Capabilities(actor).CanManage(target)
}

// VisibleMenus returns the menus role may see, in display order.
func (e *Evaluator) VisibleMenus(role domain.Role) []domain.MenuID {
	return e.Capabilities(role).Menus()
}
