package repository

import (
	"context"
	"errors"

	"intranet/internal/domain/entity"
)

// ErrInvitationConsumed is returned by MarkUsed when the record was already
// consumed by the time the conditional update ran.
var ErrInvitationConsumed = errors.New("invitation already consumed")

// ErrInvitationNotFound is returned when no invitation record matches.
var ErrInvitationNotFound = errors.New("invitation not found")

// InvitationRepository defines the operations of the invitation store.
// Records are never deleted; consumed records remain as an audit trail.
type InvitationRepository interface {
	// Create persists a new invitation record and returns its id.
	Create(ctx context.Context, record *entity.InvitationRecord) (string, error)

	// FindUnused queries for records matching (dni, code, used=false).
	// An empty result is not an error.
	FindUnused(ctx context.Context, dni, code string) ([]*entity.InvitationRecord, error)

	// MarkUsed conditionally consumes the record: it sets used=true,
	// usedBy and usedAt in one atomic update that succeeds only if the
	// record is still unused. Returns ErrInvitationConsumed when the
	// condition fails and ErrInvitationNotFound when the record vanished.
	MarkUsed(ctx context.Context, invitationID, usedBy string) error

	// List returns all records, optionally including consumed ones.
	List(ctx context.Context, includeUsed bool) ([]*entity.InvitationRecord, error)
}
