package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_IsGrantable(t *testing.T) {
	grantable := []Role{RoleRoot, RoleAdmin, RoleHR, RoleData, RoleCollaborator}
	for _, role := range grantable {
		assert.True(t, role.IsGrantable(), "role %q", role)
		assert.True(t, role.IsAuthorized(), "role %q", role)
	}

	for _, role := range []Role{RolePendingVerification, RoleNonePlaceholder, Role("unknown"), Role("")} {
		assert.False(t, role.IsGrantable(), "role %q", role)
		assert.False(t, role.IsAuthorized(), "role %q", role)
	}
}

func TestRoles_Primary(t *testing.T) {
	tests := []struct {
		name  string
		roles Roles
		want  Role
	}{
		{name: "empty set has the placeholder primary", roles: Roles{}, want: RoleNonePlaceholder},
		{name: "root outranks everything", roles: Roles{RoleCollaborator, RoleRoot, RoleHR}, want: RoleRoot},
		{name: "admin outranks hr", roles: Roles{RoleHR, RoleAdmin}, want: RoleAdmin},
		{name: "single placeholder", roles: Roles{RolePendingVerification}, want: RolePendingVerification},
		{name: "unknown roles rank below the placeholder", roles: Roles{Role("mystery")}, want: RoleNonePlaceholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.roles.Primary())
		})
	}
}

func TestRoles_HasAuthorized(t *testing.T) {
	assert.False(t, Roles{}.HasAuthorized())
	assert.False(t, Roles{RolePendingVerification, RoleNonePlaceholder}.HasAuthorized())
	assert.True(t, Roles{RolePendingVerification, RoleCollaborator}.HasAuthorized())
}

func TestRoles_Fold(t *testing.T) {
	roles := Roles{RoleCollaborator}

	folded := roles.Fold(RoleHR)
	assert.True(t, folded.Contains(RoleCollaborator))
	assert.True(t, folded.Contains(RoleHR))

	// Folding an already-held role keeps set semantics.
	again := folded.Fold(RoleHR)
	assert.Len(t, again, 2)

	// Fold never mutates the receiver.
	assert.Len(t, roles, 1)
}

func TestRolesFromStrings(t *testing.T) {
	roles := RolesFromStrings([]string{"admin", "", "viejo_rol"})
	assert.Len(t, roles, 2)
	assert.True(t, roles.Contains(RoleAdmin))
	// Unknown strings stay visible instead of being dropped.
	assert.True(t, roles.Contains(Role("viejo_rol")))
}

func TestDirectoryEntry_RoleSet(t *testing.T) {
	var absent *DirectoryEntry
	assert.Empty(t, absent.RoleSet())

	legacy := &DirectoryEntry{LegacyRole: "admin"}
	assert.True(t, legacy.RoleSet().Contains(RoleAdmin))

	// The legacy field does not duplicate a role already in the array.
	both := &DirectoryEntry{Roles: []string{"admin"}, LegacyRole: "admin"}
	assert.Len(t, both.RoleSet(), 1)

	assert.Equal(t, RoleAdmin, legacy.PrimaryRole())
}
