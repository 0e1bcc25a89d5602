package service

import (
	"context"
	"time"
)

// Event types published by the access-control core.
const (
	// EventInvitationRedeemed is emitted after a successful redemption.
	EventInvitationRedeemed = "invitation.redeemed"
	// EventRoleChanged is emitted whenever a subject's role set changes.
	EventRoleChanged = "role.changed"
)

// AccessEvent is the wire shape of access-control events pushed to the
// message queue for downstream consumers (audit, HR dashboards).
type AccessEvent struct {
	RequestID    string    `json:"request_id,omitempty"` // For distributed tracing
	Type         string    `json:"type"`
	SubjectID    string    `json:"subject_id"`
	InvitationID string    `json:"invitation_id,omitempty"`
	Roles        []string  `json:"roles,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishAccessEvent publishes an access-control event for async processing
	PublishAccessEvent(ctx context.Context, event *AccessEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
