// Package domain provides core business rules for the directory bounded
// context: roles, the manager/report tree, and category membership.
package domain

// Role is the closed set of organizational roles.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleManager   Role = "Manager"
	RoleExecutive Role = "Executive"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:     {},
	RoleManager:   {},
	RoleExecutive: {},
}

// ParseRole validates a raw role tag.
func ParseRole(raw string) (Role, bool) {
	role := Role(raw)
	_, ok := knownRoles[role]
	return role, ok
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	_, ok := knownRoles[r]
	return ok
}

// RoleSet is an optional restriction to a set of roles.
//
// A nil RoleSet means "no restriction": any authenticated role passes. An
// empty allowed-roles list on a transition edge opens the edge to everyone,
// it does not lock anyone out.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from the given roles. Returns nil when no
// roles are given, preserving the unrestricted semantic.
func NewRoleSet(roles ...Role) RoleSet {
	if len(roles) == 0 {
		return nil
	}

	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

// Allows reports whether the role passes the restriction.
func (s RoleSet) Allows(role Role) bool {
	if s == nil {
		return true
	}
	_, ok := s[role]
	return ok
}

// Slice returns the restricted roles in a stable order, or nil when
// unrestricted. Used for persistence and API responses.
func (s RoleSet) Slice() []Role {
	if s == nil {
		return nil
	}

	ordered := make([]Role, 0, len(s))
	for _, role := range []Role{RoleAdmin, RoleManager, RoleExecutive} {
		if _, ok := s[role]; ok {
			ordered = append(ordered, role)
		}
	}
	return ordered
}
