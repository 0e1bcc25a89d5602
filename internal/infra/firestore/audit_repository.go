package firestore

import (
	"context"
	"time"

	"intranet/internal/domain/repository"
	"intranet/internal/domain/service"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
)

const auditCollection = "audit_log"

// auditDoc is the stored shape of an access event.
type auditDoc struct {
	RequestID    string    `firestore:"requestId,omitempty"`
	Type         string    `firestore:"type"`
	SubjectID    string    `firestore:"subjectId"`
	InvitationID string    `firestore:"invitationId,omitempty"`
	Roles        []string  `firestore:"roles,omitempty"`
	OccurredAt   time.Time `firestore:"occurredAt"`
	RecordedAt   time.Time `firestore:"recordedAt,serverTimestamp"`
}

type auditRepository struct {
	client *firestore.Client
}

// NewAuditRepository creates the Firestore-backed audit trail.
func NewAuditRepository(client *firestore.Client) repository.AuditRepository {
	return &auditRepository{client: client}
}

func (r *auditRepository) Append(ctx context.Context, event *service.AccessEvent) error {
	doc := auditDoc{
		RequestID:    event.RequestID,
		Type:         event.Type,
		SubjectID:    event.SubjectID,
		InvitationID: event.InvitationID,
		Roles:        event.Roles,
		OccurredAt:   event.OccurredAt,
	}

	_, _, err := r.client.Collection(auditCollection).Add(ctx, doc)
	if err != nil {
		return errors.Wrap(err, "failed to append audit event")
	}

	return nil
}
