package domain

import "fmt"

// Role is the closed set of privilege levels a membership can hold.
// OWNER inherits everything ADMIN can do, ADMIN inherits everything MEMBER
// can do; BILLING sits outside that chain.
type Role string

const (
	RoleOwner   Role = "OWNER"
	RoleAdmin   Role = "ADMIN"
	RoleMember  Role = "MEMBER"
	RoleBilling Role = "BILLING"
)

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleOwner, RoleAdmin, RoleMember, RoleBilling}
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember, RoleBilling:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole converts stored or wire role values back into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("domain: unknown role %q", s)
	}
	return r, nil
}
