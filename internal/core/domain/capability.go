package domain

// MenuID identifies a navigation entry of the back-office.
type MenuID string

const (
	MenuDashboard    MenuID = "dashboard"
	MenuClients      MenuID = "clients"
	MenuTasks        MenuID = "tasks"
	MenuCalendar     MenuID = "calendar"
	MenuDocuments    MenuID = "documents"
	MenuInvoices     MenuID = "invoices"
	MenuIdentifiants MenuID = "identifiants"
	MenuEmployees    MenuID = "employees"
	MenuUsers        MenuID = "users"
	MenuSettings     MenuID = "settings"
	MenuIntegrations MenuID = "integrations"
)

// AllMenus lists every menu in display order.
func AllMenus() []MenuID {
	return []MenuID{
		MenuDashboard, MenuClients, MenuTasks, MenuCalendar, MenuDocuments,
		MenuInvoices, MenuIdentifiants, MenuEmployees, MenuUsers, MenuSettings,
		MenuIntegrations,
	}
}

// FieldKind groups fields whose values are hidden from some roles.
type FieldKind string

const (
	FieldCredential FieldKind = "credential"
	FieldFinancial  FieldKind = "financial"
)

// AllFieldKinds lists every secret field kind.
func AllFieldKinds() []FieldKind {
	return []FieldKind{FieldCredential, FieldFinancial}
}

// Action is a verb applied to an entity kind.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// AllActions lists every action.
func AllActions() []Action {
	return []Action{ActionView, ActionCreate, ActionUpdate, ActionDelete}
}

// EntityKind names a managed entity.
type EntityKind string

const (
	EntityClient   EntityKind = "client"
	EntityTask     EntityKind = "task"
	EntityInvoice  EntityKind = "invoice"
	EntityDeadline EntityKind = "deadline"
	EntityUser     EntityKind = "user"
)

// AllEntities lists every entity kind.
func AllEntities() []EntityKind {
	return []EntityKind{EntityClient, EntityTask, EntityInvoice, EntityDeadline, EntityUser}
}

// Permission is an (action, entity) pair, e.g. (create, client).
type Permission struct {
	Action Action
	Entity EntityKind
}

func (p Permission) String() string {
	return string(p.Entity) + ":" + string(p.Action)
}
