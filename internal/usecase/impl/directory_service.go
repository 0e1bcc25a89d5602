package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "intranet/internal/delivery/context"
	"intranet/internal/domain/entity"
	domainerrors "intranet/internal/domain/errors"
	"intranet/internal/domain/repository"
	"intranet/internal/usecase"

	"github.com/pkg/errors"
)

// directoryService implements the DirectoryUsecase interface.
type directoryService struct {
	directory repository.DirectoryRepository
	logger    *slog.Logger
}

// NewDirectoryService is the constructor for directoryService.
func NewDirectoryService(
	directory repository.DirectoryRepository,
	logger *slog.Logger,
) usecase.DirectoryUsecase {
	return &directoryService{
		directory: directory,
		logger:    logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *directoryService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// EnsureEntry makes sure a directory entry exists for the identity after a
// successful sign-in, without ever overwriting role data. First sign-in
// creates the entry with an empty role set; every sign-in appends to the
// login history through a merge patch, so the bootstrap write commutes
// with a concurrent redemption write.
func (srv *directoryService) EnsureEntry(ctx context.Context, identity *entity.Identity) (*entity.DirectoryEntry, error) {
	if identity == nil || identity.SubjectID == "" {
		return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "ensure entry without identity")
	}

	srv.log(ctx).Debug("Ensuring directory entry", slog.String("subject_id", identity.SubjectID))

	now := time.Now()

	entry, err := srv.directory.Get(ctx, identity.SubjectID)
	switch {
	case errors.Is(err, repository.ErrEntryNotFound):
		entry = &entity.DirectoryEntry{
			SubjectID:    identity.SubjectID,
			Roles:        []string{},
			Email:        identity.Email,
			DisplayName:  identity.DisplayName,
			AvatarURL:    identity.AvatarURL,
			CreatedAt:    now,
			UpdatedAt:    now,
			LastLoginAt:  now,
			LoginHistory: []time.Time{now},
		}
		if err := srv.directory.Create(ctx, entry); err != nil {
			// A rapid repeated sign-in may have created the entry between
			// the read and the create. Fall through to the merge path.
			if existing, getErr := srv.directory.Get(ctx, identity.SubjectID); getErr == nil {
				return srv.touchLogin(ctx, existing, now)
			}

			srv.log(ctx).Error("Failed to create directory entry",
				slog.Any("error", err), slog.String("subject_id", identity.SubjectID))

			return nil, errors.Wrap(err, "failed to create directory entry")
		}
		srv.log(ctx).Info("Directory entry created on first sign-in", slog.String("subject_id", identity.SubjectID))

		return entry, nil

	case err != nil:
		srv.log(ctx).Error("Failed to read directory entry",
			slog.Any("error", err), slog.String("subject_id", identity.SubjectID))

		return nil, errors.Wrap(err, "failed to read directory entry")
	}

	return srv.touchLogin(ctx, entry, now)
}

// touchLogin records a login on an existing entry. The patch never names
// roles or dni, preserving whatever a concurrent redemption wrote.
func (srv *directoryService) touchLogin(ctx context.Context, entry *entity.DirectoryEntry, now time.Time) (*entity.DirectoryEntry, error) {
	patch := entity.Patch{
		"lastLoginAt":  now,
		"updatedAt":    now,
		"loginHistory": entity.ArrayAppend{Elems: []any{now}},
	}
	if err := srv.directory.Patch(ctx, entry.SubjectID, patch); err != nil {
		srv.log(ctx).Error("Failed to record login",
			slog.Any("error", err), slog.String("subject_id", entry.SubjectID))

		return nil, errors.Wrap(err, "failed to record login")
	}

	entry.LastLoginAt = now
	entry.UpdatedAt = now
	entry.LoginHistory = append(entry.LoginHistory, now)

	return entry, nil
}

// Roles returns the normalized role set for a subject. The absent-document
// case normalizes to the empty set rather than an error.
func (srv *directoryService) Roles(ctx context.Context, subjectID string) (entity.Roles, error) {
	entry, err := srv.directory.Get(ctx, subjectID)
	if errors.Is(err, repository.ErrEntryNotFound) {
		return entity.Roles{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read directory entry")
	}

	return entry.RoleSet(), nil
}
