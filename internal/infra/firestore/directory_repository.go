package firestore

import (
	"context"
	"log/slog"

	"intranet/internal/domain/entity"
	"intranet/internal/domain/repository"
	"intranet/internal/domain/service"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// directoryRepository implements repository.DirectoryRepository on a
// Firestore collection keyed by subject id.
type directoryRepository struct {
	client *firestore.Client
	logger *slog.Logger
}

// NewDirectoryRepository is the constructor for directoryRepository.
func NewDirectoryRepository(client *firestore.Client, logger *slog.Logger) repository.DirectoryRepository {
	return &directoryRepository{
		client: client,
		logger: logger,
	}
}

func (r *directoryRepository) doc(subjectID string) *firestore.DocumentRef {
	return r.client.Collection(directoryCollection).Doc(subjectID)
}

// Get retrieves the directory entry for a subject.
func (r *directoryRepository) Get(ctx context.Context, subjectID string) (*entity.DirectoryEntry, error) {
	snap, err := r.doc(subjectID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, repository.ErrEntryNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get directory entry")
	}

	return decodeEntry(snap)
}

// Create persists a brand-new entry; fails if the document already exists.
func (r *directoryRepository) Create(ctx context.Context, entry *entity.DirectoryEntry) error {
	if _, err := r.doc(entry.SubjectID).Create(ctx, entry); err != nil {
		return errors.Wrap(err, "failed to create directory entry")
	}

	return nil
}

// Patch applies a merge-style partial update. ArrayAppend patch values
// translate to Firestore's array-union transform, everything else to a
// field replacement under MergeAll; the upsert creates the document when
// absent.
func (r *directoryRepository) Patch(ctx context.Context, subjectID string, patch entity.Patch) error {
	data := make(map[string]any, len(patch))
	for field, value := range patch {
		if appendOp, ok := value.(entity.ArrayAppend); ok {
			data[field] = firestore.ArrayUnion(appendOp.Elems...)

			continue
		}
		data[field] = value
	}

	if _, err := r.doc(subjectID).Set(ctx, data, firestore.MergeAll); err != nil {
		return errors.Wrap(err, "failed to patch directory entry")
	}

	return nil
}

// Subscribe streams every change to the subject's document, the initial
// value included. The goroutine exits when the returned subscription is
// cancelled; snapshot stream errors are reported through errFn and end
// the stream.
func (r *directoryRepository) Subscribe(ctx context.Context, subjectID string, fn func(*entity.DirectoryEntry), errFn func(error)) (service.Subscription, error) {
	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	iter := r.doc(subjectID).Snapshots(streamCtx)

	go func() {
		defer iter.Stop()

		for {
			snap, err := iter.Next()
			if err != nil {
				if streamCtx.Err() != nil {
					// Cancelled by Unsubscribe; not a transport failure.
					return
				}
				r.logger.Error("Directory snapshot stream failed",
					slog.Any("error", err), slog.String("subject_id", subjectID))
				errFn(err)

				return
			}

			if !snap.Exists() {
				fn(nil)

				continue
			}

			entry, err := decodeEntry(snap)
			if err != nil {
				r.logger.Error("Failed to decode directory snapshot",
					slog.Any("error", err), slog.String("subject_id", subjectID))
				errFn(err)

				continue
			}
			fn(entry)
		}
	}()

	return service.SubscriptionFunc(cancel), nil
}

func decodeEntry(snap *firestore.DocumentSnapshot) (*entity.DirectoryEntry, error) {
	var entry entity.DirectoryEntry
	if err := snap.DataTo(&entry); err != nil {
		return nil, errors.Wrap(err, "failed to decode directory entry")
	}
	entry.SubjectID = snap.Ref.ID

	return &entry, nil
}
