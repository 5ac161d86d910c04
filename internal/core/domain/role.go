package domain

// Role is an opaque tag carried by an authenticated user. The set of valid
// tags depends on the deployment variant (see authz.AccountingFirm and
// authz.FuelStation); unknown tags resolve to no capabilities.
type Role string

// Accounting-firm roles, lowest to highest.
const (
	RoleTrainee    Role = "trainee"
	RoleEmployee   Role = "employee"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Fuel-station roles, lowest to highest.
const (
	RolePompiste    Role = "pompiste"
	RoleCaissier    Role = "caissier"
	RoleResponsable Role = "responsable"
	RoleGerant      Role = "gerant"
)

func (r Role) String() string { return string(r) }
