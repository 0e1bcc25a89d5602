package firestore

import (
	"context"
	"log/slog"
	"time"

	"intranet/internal/domain/entity"
	"intranet/internal/domain/repository"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// invitationRepository implements repository.InvitationRepository on a
// Firestore collection of invitation records.
type invitationRepository struct {
	client *firestore.Client
	logger *slog.Logger
}

// NewInvitationRepository is the constructor for invitationRepository.
func NewInvitationRepository(client *firestore.Client, logger *slog.Logger) repository.InvitationRepository {
	return &invitationRepository{
		client: client,
		logger: logger,
	}
}

func (r *invitationRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(invitationCollection)
}

// Create persists a new invitation record and returns its generated id.
func (r *invitationRepository) Create(ctx context.Context, record *entity.InvitationRecord) (string, error) {
	ref, _, err := r.collection().Add(ctx, record)
	if err != nil {
		return "", errors.Wrap(err, "failed to create invitation")
	}

	return ref.ID, nil
}

// FindUnused queries for records matching (dni, code, used=false). The
// code is a shared secret compared exactly by the store.
func (r *invitationRepository) FindUnused(ctx context.Context, dni, code string) ([]*entity.InvitationRecord, error) {
	iter := r.collection().
		Where("dni", "==", dni).
		Where("code", "==", code).
		Where("used", "==", false).
		Documents(ctx)
	defer iter.Stop()

	return collectRecords(iter)
}

// MarkUsed consumes the record inside a transaction: the write succeeds
// only if the record is still unused when the transaction commits, which
// makes this update the linearization point of redemption.
func (r *invitationRepository) MarkUsed(ctx context.Context, invitationID, usedBy string) error {
	doc := r.collection().Doc(invitationID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(doc)
		if status.Code(err) == codes.NotFound {
			return repository.ErrInvitationNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to read invitation")
		}

		used, err := snap.DataAt("used")
		if err != nil {
			return errors.Wrap(err, "failed to read used flag")
		}
		if used == true {
			return repository.ErrInvitationConsumed
		}

		return tx.Update(doc, []firestore.Update{
			{Path: "used", Value: true},
			{Path: "usedBy", Value: usedBy},
			{Path: "usedAt", Value: time.Now()},
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvitationNotFound) || errors.Is(err, repository.ErrInvitationConsumed) {
			return err
		}

		return errors.Wrap(err, "mark-used transaction failed")
	}

	return nil
}

// List returns invitation records for audit, newest first.
func (r *invitationRepository) List(ctx context.Context, includeUsed bool) ([]*entity.InvitationRecord, error) {
	query := r.collection().OrderBy("createdAt", firestore.Desc)
	if !includeUsed {
		query = r.collection().Where("used", "==", false).OrderBy("createdAt", firestore.Desc)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	return collectRecords(iter)
}

func collectRecords(iter *firestore.DocumentIterator) ([]*entity.InvitationRecord, error) {
	var records []*entity.InvitationRecord
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to iterate invitations")
		}

		var record entity.InvitationRecord
		if err := snap.DataTo(&record); err != nil {
			return nil, errors.Wrap(err, "failed to decode invitation")
		}
		record.InvitationID = snap.Ref.ID
		records = append(records, &record)
	}

	return records, nil
}
