package entity

import "time"

// DirectoryEntry is the platform's own profile and role record for a
// subject, distinct from the identity provider's record. An entry exists
// for a subject iff that subject has completed at least one login; it may
// exist with no roles, meaning "registered but unauthorized".
//
// The entry is written concurrently by the login bootstrap path and by the
// invitation redemption protocol. Both writers use merge-style patches, so
// writes to disjoint field sets commute.
type DirectoryEntry struct {
	SubjectID    string      `firestore:"subjectId"`
	Roles        []string    `firestore:"roles"`
	DNI          string      `firestore:"dni,omitempty"`
	Email        string      `firestore:"email,omitempty"`
	DisplayName  string      `firestore:"displayName,omitempty"`
	AvatarURL    string      `firestore:"avatarUrl,omitempty"`
	CreatedAt    time.Time   `firestore:"createdAt"`
	UpdatedAt    time.Time   `firestore:"updatedAt"`
	LastLoginAt  time.Time   `firestore:"lastLoginAt"`
	LoginHistory []time.Time `firestore:"loginHistory"`

	// Legacy documents carry a single role string instead of the roles
	// array. Kept read-only so old data normalizes instead of breaking.
	LegacyRole string `firestore:"role,omitempty"`
}

// RoleSet normalizes the stored role data into a Roles set. Legacy
// single-role documents fold their role into the set; the absent-document
// and empty-array cases both normalize to the empty set.
func (e *DirectoryEntry) RoleSet() Roles {
	if e == nil {
		return Roles{}
	}

	roles := RolesFromStrings(e.Roles)
	if e.LegacyRole != "" && !roles.Contains(Role(e.LegacyRole)) {
		roles = append(roles, Role(e.LegacyRole))
	}

	return roles
}

// PrimaryRole is the derived highest-ranked role of the entry.
func (e *DirectoryEntry) PrimaryRole() Role {
	return e.RoleSet().Primary()
}
