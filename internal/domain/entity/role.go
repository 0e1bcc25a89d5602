// Package entity contains the core business objects of the project.
package entity

import "slices"

// Role represents a platform role a subject can hold in the directory.
type Role string

const (
	// RoleRoot indicates full platform administration.
	RoleRoot Role = "root"
	// RoleAdmin indicates municipal administration.
	RoleAdmin Role = "admin"
	// RoleHR indicates human-resources access.
	RoleHR Role = "hr"
	// RoleData indicates data-management access.
	RoleData Role = "data"
	// RoleCollaborator indicates a regular employee.
	RoleCollaborator Role = "collaborator"
	// RolePendingVerification marks a subject whose onboarding is not yet approved.
	RolePendingVerification Role = "pending_verification"
	// RoleNonePlaceholder is a legacy placeholder found on old directory
	// documents ("Sin rol"). It never grants access.
	RoleNonePlaceholder Role = "Sin rol"
)

// roleRank orders roles for default-route selection only. Authorization is
// always set-membership, never rank comparison.
var roleRank = map[Role]int{
	RoleRoot:                6,
	RoleAdmin:               5,
	RoleHR:                  4,
	RoleData:                4,
	RoleCollaborator:        3,
	RolePendingVerification: 2,
	RoleNonePlaceholder:     1,
}

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a known value, placeholders included.
func (r Role) IsValid() bool {
	_, ok := roleRank[r]

	return ok
}

// IsGrantable reports whether the role may be attached to an invitation.
// Placeholders exist only as directory data, never as grants.
func (r Role) IsGrantable() bool {
	switch r {
	case RoleRoot, RoleAdmin, RoleHR, RoleData, RoleCollaborator:
		return true
	default:
		return false
	}
}

// IsAuthorized reports whether the role grants access to protected routes.
func (r Role) IsAuthorized() bool {
	return r.IsGrantable()
}

// Rank returns the role's rank for default-landing selection. Unknown roles
// rank zero.
func (r Role) Rank() int {
	return roleRank[r]
}

// Roles is a set of Role values with slice representation.
type Roles []Role

// Contains checks if the roles contain a specific role.
func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}

// HasAuthorized reports whether any held role grants protected access.
func (rs Roles) HasAuthorized() bool {
	return slices.ContainsFunc(rs, Role.IsAuthorized)
}

// Primary returns the highest-ranked role, or RoleNonePlaceholder when the
// set is empty. Used only to pick a default landing, never for permission
// checks.
func (rs Roles) Primary() Role {
	primary := RoleNonePlaceholder
	for _, r := range rs {
		if r.Rank() > primary.Rank() {
			primary = r
		}
	}

	return primary
}

// Fold returns a copy of the set with role added, preserving set semantics.
func (rs Roles) Fold(role Role) Roles {
	if rs.Contains(role) {
		return slices.Clone(rs)
	}

	return append(slices.Clone(rs), role)
}

// ToStrings converts Roles to []string for serialization.
func (rs Roles) ToStrings() []string {
	result := make([]string, len(rs))
	for i, r := range rs {
		result[i] = r.String()
	}

	return result
}

// RolesFromStrings converts []string to Roles, keeping unknown strings so
// legacy directory data stays visible rather than being silently dropped.
// Empty strings are discarded.
func RolesFromStrings(ss []string) Roles {
	result := make(Roles, 0, len(ss))
	for _, s := range ss {
		if s == "" {
			continue
		}
		result = append(result, Role(s))
	}

	return result
}
