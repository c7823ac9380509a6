package domain

// Role names carried in the JWT "role" claim.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCarer   = "carer"
)
