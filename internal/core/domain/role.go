package domain

// Role is the closed set of account roles. Every dispatch site keys on it, so
// adding a value here must be followed by updating Roles and the policy table.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleSoleTrader Role = "soleTrader"
	RoleAdmin      Role = "admin"
)

// Roles returns every defined role.
func Roles() []Role {
	return []Role{RoleCustomer, RoleSoleTrader, RoleAdmin}
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSoleTrader, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole converts s to a Role, reporting false for anything outside the set.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}
