package models

import "fmt"

// Role is the access tier assigned to a user account. It determines both
// authorization and the landing route the client is steered to after a grant.
type Role string

const (
	// RoleEndUser is the default tier for self-registered accounts.
	RoleEndUser Role = "end_user"

	// RolePremiumUser is the paid tier with elevated storage quotas.
	RolePremiumUser Role = "premium_user"

	// RoleSysAdmin can manage end-user and premium accounts.
	RoleSysAdmin Role = "sys_admin"

	// RoleSuperAdmin can manage every account, including sys admins.
	RoleSuperAdmin Role = "super_admin"
)

// AllRoles lists every valid role, ordered from least to most privileged.
var AllRoles = []Role{RoleEndUser, RolePremiumUser, RoleSysAdmin, RoleSuperAdmin}

// ParseRole converts a string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleEndUser, RolePremiumUser, RoleSysAdmin, RoleSuperAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Admin reports whether the role carries administrative privileges.
func (r Role) Admin() bool {
	return r == RoleSysAdmin || r == RoleSuperAdmin
}

// LandingRoute returns the client route a freshly granted session of this
// role should be steered to. Unknown roles fall back to the end-user route
// rather than failing the grant.
func (r Role) LandingRoute() string {
	switch r {
	case RolePremiumUser:
		return "/premium"
	case RoleSysAdmin:
		return "/admin"
	case RoleSuperAdmin:
		return "/superadmin"
	default:
		return "/dashboard"
	}
}
