package model

import "fmt"

// Role is the access level attached to a portal user. The set is closed:
// the upstream payroll API only ever issues these four values.
type Role string

const (
	RoleAdmin    Role = "ROLE_ADMIN"
	RoleHR       Role = "ROLE_HR"
	RoleFinance  Role = "ROLE_FINANCE"
	RoleEmployee Role = "ROLE_EMPLOYEE"
)

// DefaultRole is assigned when a login response carries no role.
// TODO: confirm with the payroll API team whether a role-less login
// response is intentional; defaulting here may be masking an upstream bug.
const DefaultRole = RoleEmployee

// AllRoles returns every known role.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleHR, RoleFinance, RoleEmployee}
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleFinance, RoleEmployee:
		return true
	}
	return false
}

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
