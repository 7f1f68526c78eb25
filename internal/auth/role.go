package auth

import "fmt"

// Role identifies which tier of the tenant hierarchy an account
// belongs to.
type Role string

const (
	RoleMaster       Role = "MASTER"
	RoleAgency       Role = "AGENCY"
	RoleAgencyClient Role = "AGENCY_CLIENT"
)

// Valid reports whether the role is a known value
func (r Role) Valid() bool {
	switch r {
	case RoleMaster, RoleAgency, RoleAgencyClient:
		return true
	}
	return false
}

// ParseRole parses a role string, rejecting unknown values
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}
