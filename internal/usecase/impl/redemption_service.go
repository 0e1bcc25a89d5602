package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "intranet/internal/delivery/context"
	"intranet/internal/domain/entity"
	domainerrors "intranet/internal/domain/errors"
	"intranet/internal/domain/repository"
	"intranet/internal/domain/service"
	"intranet/internal/usecase"

	"github.com/pkg/errors"
)

// Redemption outcomes reported to metrics.
const (
	redemptionOutcomeOK              = "ok"
	redemptionOutcomeNotFound        = "not_found_or_consumed"
	redemptionOutcomePartial         = "partial"
	redemptionOutcomeInvalid         = "invalid"
	redemptionOutcomeUnauthenticated = "unauthenticated"
	redemptionOutcomeError           = "error"
)

// redemptionService implements the RedemptionUsecase interface.
type redemptionService struct {
	invitations repository.InvitationRepository
	directory   repository.DirectoryRepository
	publisher   service.EventPublisher
	metrics     service.MetricsRecorder
	logger      *slog.Logger
}

// NewRedemptionService is the constructor for redemptionService.
func NewRedemptionService(
	invitations repository.InvitationRepository,
	directory repository.DirectoryRepository,
	publisher service.EventPublisher,
	metrics service.MetricsRecorder,
	logger *slog.Logger,
) usecase.RedemptionUsecase {
	return &redemptionService{
		invitations: invitations,
		directory:   directory,
		publisher:   publisher,
		metrics:     metrics,
		logger:      logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *redemptionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Redeem converts a (dni, code) pair typed by a freshly-authenticated
// identity into a granted role, exactly once per invitation record.
//
// The mark-used update is the linearization point of "this invitation is
// consumed": it is a conditional update that succeeds only while the
// record is still unused, so concurrent redeemers of the same record
// observe exactly one success. The subsequent provision step is a keyed
// merge upsert on the redeemer's own subject id and is therefore safe to
// run after losing any such race.
func (srv *redemptionService) Redeem(ctx context.Context, identity *entity.Identity, input usecase.RedeemInput) (*usecase.RedeemOutput, error) {
	if identity == nil || identity.SubjectID == "" {
		srv.metrics.RecordRedemption(redemptionOutcomeUnauthenticated)

		return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "redeem without identity")
	}

	dni := strings.TrimSpace(input.DNI)
	code := strings.TrimSpace(input.Code)
	if dni == "" || code == "" {
		srv.metrics.RecordRedemption(redemptionOutcomeInvalid)

		return nil, errors.Wrap(domainerrors.ErrInvalidArgument, "dni and code are required")
	}

	srv.log(ctx).Info("Redeeming invitation",
		slog.String("subject_id", identity.SubjectID), slog.String("dni", dni))

	// Step 1 - Lookup. Zero matches collapses "wrong code" and "already
	// used" into one answer so callers cannot probe which dnis are taken.
	records, err := srv.invitations.FindUnused(ctx, dni, code)
	if err != nil {
		srv.metrics.RecordRedemption(redemptionOutcomeError)
		srv.log(ctx).Error("Invitation lookup failed", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrStoreUnavailable, "invitation lookup failed")
	}
	if len(records) == 0 {
		srv.metrics.RecordRedemption(redemptionOutcomeNotFound)

		return nil, errors.Wrap(domainerrors.ErrInvitationNotFoundOrConsumed, "no unused invitation matches")
	}
	if len(records) > 1 {
		// Should never happen given the creation invariant; take the first.
		srv.log(ctx).Warn("Multiple unused invitations match the same credential pair",
			slog.String("dni", dni), slog.Int("count", len(records)))
	}
	record := records[0]

	// Step 2 - Mark used, conditionally. Losing the condition means a
	// concurrent redeemer got here first.
	if err := srv.invitations.MarkUsed(ctx, record.InvitationID, identity.SubjectID); err != nil {
		if errors.Is(err, repository.ErrInvitationConsumed) || errors.Is(err, repository.ErrInvitationNotFound) {
			srv.metrics.RecordRedemption(redemptionOutcomeNotFound)

			return nil, errors.Wrap(domainerrors.ErrInvitationNotFoundOrConsumed, "invitation consumed concurrently")
		}
		srv.metrics.RecordRedemption(redemptionOutcomeError)
		srv.log(ctx).Error("Failed to mark invitation used",
			slog.Any("error", err), slog.String("invitation_id", record.InvitationID))

		return nil, errors.Wrap(domainerrors.ErrStoreUnavailable, "failed to mark invitation used")
	}

	// Step 3 - Provision. Merge upsert: unrelated fields on the entry are
	// preserved, the granted role folds into the existing set.
	roles, err := srv.currentRoles(ctx, identity.SubjectID)
	if err != nil {
		return nil, srv.partialRedemption(ctx, identity, record, err)
	}
	granted := roles.Fold(record.GrantedRole())

	patch := entity.Patch{
		"subjectId": identity.SubjectID,
		"dni":       dni,
		"roles":     granted.ToStrings(),
		"updatedAt": time.Now(),
	}
	if err := srv.directory.Patch(ctx, identity.SubjectID, patch); err != nil {
		return nil, srv.partialRedemption(ctx, identity, record, err)
	}

	// Step 4 - Notify. Events are best-effort: the directory subscription
	// already propagates the role change to live observers.
	srv.publishRedeemed(ctx, identity, record, granted)

	srv.metrics.RecordRedemption(redemptionOutcomeOK)
	srv.log(ctx).Info("Invitation redeemed",
		slog.String("subject_id", identity.SubjectID),
		slog.String("invitation_id", record.InvitationID),
		slog.String("granted_role", record.Role))

	return &usecase.RedeemOutput{
		InvitationID: record.InvitationID,
		GrantedRole:  record.GrantedRole(),
		Roles:        granted,
	}, nil
}

func (srv *redemptionService) currentRoles(ctx context.Context, subjectID string) (entity.Roles, error) {
	entry, err := srv.directory.Get(ctx, subjectID)
	if errors.Is(err, repository.ErrEntryNotFound) {
		return entity.Roles{}, nil
	}
	if err != nil {
		return nil, err
	}

	return entry.RoleSet(), nil
}

// partialRedemption records the known gap between steps 2 and 3: the
// invitation is consumed but the role was not granted. Not auto-retried —
// a retry of the lookup would now correctly report "already consumed" and
// mask the bug — so it is logged with enough context for manual operator
// remediation.
func (srv *redemptionService) partialRedemption(ctx context.Context, identity *entity.Identity, record *entity.InvitationRecord, cause error) error {
	srv.metrics.RecordRedemption(redemptionOutcomePartial)
	srv.log(ctx).Error("Partial redemption: invitation consumed but role grant failed",
		slog.Any("error", cause),
		slog.String("subject_id", identity.SubjectID),
		slog.String("invitation_id", record.InvitationID),
		slog.String("role", record.Role))

	return errors.Wrap(domainerrors.ErrPartialRedemption, "role grant failed after invitation was consumed")
}

func (srv *redemptionService) publishRedeemed(ctx context.Context, identity *entity.Identity, record *entity.InvitationRecord, roles entity.Roles) {
	now := time.Now()
	events := []*service.AccessEvent{
		{
			RequestID:    deliverycontext.GetRequestIDFromContext(ctx),
			Type:         service.EventInvitationRedeemed,
			SubjectID:    identity.SubjectID,
			InvitationID: record.InvitationID,
			Roles:        roles.ToStrings(),
			OccurredAt:   now,
		},
		{
			RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
			Type:       service.EventRoleChanged,
			SubjectID:  identity.SubjectID,
			Roles:      roles.ToStrings(),
			OccurredAt: now,
		},
	}
	for _, event := range events {
		if err := srv.publisher.PublishAccessEvent(ctx, event); err != nil {
			srv.log(ctx).Warn("Failed to publish access event",
				slog.Any("error", err), slog.String("type", event.Type))
		}
	}
}
