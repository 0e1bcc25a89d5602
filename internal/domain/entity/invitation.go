package entity

import "time"

// InvitationRecord is a pre-provisioned, single-use credential pair
// (dni, code) that grants a specific role on redemption. Records are
// created by operators, consumed exactly once and never deleted; consumed
// records remain as an audit trail.
//
// Invariant: Used transitions false -> true exactly once, and UsedBy/UsedAt
// are set atomically with that transition.
type InvitationRecord struct {
	InvitationID string     `firestore:"-"`
	DNI          string     `firestore:"dni"`
	Code         string     `firestore:"code"`
	Role         string     `firestore:"role"`
	CreatedBy    string     `firestore:"createdBy"`
	CreatedAt    time.Time  `firestore:"createdAt"`
	Used         bool       `firestore:"used"`
	UsedBy       string     `firestore:"usedBy,omitempty"`
	UsedAt       *time.Time `firestore:"usedAt,omitempty"`
}

// GrantedRole returns the role this invitation grants on redemption.
func (r *InvitationRecord) GrantedRole() Role {
	return Role(r.Role)
}
