package repository

import (
	"context"

	"intranet/internal/domain/service"
)

// AuditRepository persists access-control events into the append-only
// audit trail consumed by HR dashboards.
type AuditRepository interface {
	// Append stores one event. Appending the same event twice is
	// acceptable; the trail tolerates at-least-once delivery.
	Append(ctx context.Context, event *service.AccessEvent) error
}
