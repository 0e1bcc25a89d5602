package usecase

import (
	"context"

	"intranet/internal/domain/entity"
)

// DirectoryUsecase owns the bootstrap path of the user directory: making
// sure an entry exists after first successful sign-in without overwriting
// an existing one.
type DirectoryUsecase interface {
	// EnsureEntry creates the entry on first sign-in and appends to the
	// login history on every subsequent one. Safe to call on every
	// sign-in, including rapid repeated sign-ins: idempotent with respect
	// to roles and dni, monotonically appends history.
	EnsureEntry(ctx context.Context, identity *entity.Identity) (*entity.DirectoryEntry, error)

	// Roles returns the current normalized role set for a subject,
	// absent-document included (empty set).
	Roles(ctx context.Context, subjectID string) (entity.Roles, error)
}
