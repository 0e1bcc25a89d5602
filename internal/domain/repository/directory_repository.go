// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers
// and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"intranet/internal/domain/entity"
	"intranet/internal/domain/service"
)

// ErrEntryNotFound is a domain-specific error returned when a directory
// entry does not exist for a subject.
var ErrEntryNotFound = errors.New("directory entry not found")

// DirectoryRepository defines the operations of the user directory store:
// point reads, merge writes and per-document push subscriptions, keyed by
// subject id.
type DirectoryRepository interface {
	// Get retrieves the directory entry for a subject.
	// Returns ErrEntryNotFound when the document is absent.
	Get(ctx context.Context, subjectID string) (*entity.DirectoryEntry, error)

	// Create persists a brand-new entry. Used only by the login bootstrap
	// path for first sign-in.
	Create(ctx context.Context, entry *entity.DirectoryEntry) error

	// Patch applies a merge-style partial update: fields named by the
	// patch are replaced, every other field on the document is preserved.
	Patch(ctx context.Context, subjectID string, patch entity.Patch) error

	// Subscribe registers fn for push notification of every change to the
	// subject's entry, including the initial value and the absent-document
	// case (nil entry). Delivery stops when the returned subscription is
	// cancelled; transport failures are reported through errFn.
	Subscribe(ctx context.Context, subjectID string, fn func(*entity.DirectoryEntry), errFn func(error)) (service.Subscription, error)
}
