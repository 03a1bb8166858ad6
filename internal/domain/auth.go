package domain

import "strings"

// Role is the coarse actor category carried in the credential claims.
type Role string

const (
	RoleUser   Role = "user"
	RoleDoctor Role = "doctor"
	RoleAdmin  Role = "admin"
)

// Roles lists every known role.
var Roles = []Role{RoleUser, RoleDoctor, RoleAdmin}

// ParseRole normalizes s into a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// LoginPath is the per-role authentication view.
func (r Role) LoginPath() string {
	return "/" + string(r) + "/login"
}

// DashboardPath is the protected landing view for the role.
func (r Role) DashboardPath() string {
	return "/" + string(r) + "/dashboard"
}

// Profile is the user object returned alongside the credential at login.
type Profile struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// LandingRole picks the dashboard to open after login; unknown or missing roles land on user.
func (p Profile) LandingRole() Role {
	if r, ok := ParseRole(p.Role); ok {
		return r
	}
	return RoleUser
}
