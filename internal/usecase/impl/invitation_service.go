package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"intranet/config"
	deliverycontext "intranet/internal/delivery/context"
	"intranet/internal/domain/entity"
	domainerrors "intranet/internal/domain/errors"
	"intranet/internal/domain/repository"
	"intranet/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// operatorRoles are the roles allowed to manage invitation records.
var operatorRoles = entity.Roles{entity.RoleRoot, entity.RoleAdmin, entity.RoleHR}

// invitationService implements the InvitationAdminUsecase interface.
type invitationService struct {
	invitations repository.InvitationRepository
	cfg         *config.Config
	logger      *slog.Logger
}

// NewInvitationService is the constructor for invitationService.
func NewInvitationService(
	invitations repository.InvitationRepository,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.InvitationAdminUsecase {
	return &invitationService{
		invitations: invitations,
		cfg:         cfg,
		logger:      logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *invitationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Create pre-provisions a single-use invitation for a candidate.
func (srv *invitationService) Create(ctx context.Context, operator *entity.Identity, roles entity.Roles, input usecase.CreateInvitationInput) (*usecase.CreateInvitationOutput, error) {
	if err := srv.authorize(operator, roles); err != nil {
		return nil, err
	}

	dni := strings.TrimSpace(input.DNI)
	if dni == "" {
		return nil, errors.Wrap(domainerrors.ErrInvalidArgument, "dni is required")
	}
	if !input.Role.IsGrantable() {
		return nil, errors.Wrapf(domainerrors.ErrRoleNotGrantable, "role %q", input.Role)
	}

	code := strings.TrimSpace(input.Code)
	if code == "" {
		code = srv.generateCode()
	}

	record := &entity.InvitationRecord{
		DNI:       dni,
		Code:      code,
		Role:      input.Role.String(),
		CreatedBy: operator.SubjectID,
		CreatedAt: time.Now(),
		Used:      false,
	}

	id, err := srv.invitations.Create(ctx, record)
	if err != nil {
		srv.log(ctx).Error("Failed to create invitation",
			slog.Any("error", err), slog.String("dni", dni))

		return nil, errors.Wrap(domainerrors.ErrStoreUnavailable, "failed to create invitation")
	}
	record.InvitationID = id

	srv.log(ctx).Info("Invitation created",
		slog.String("invitation_id", id),
		slog.String("dni", dni),
		slog.String("role", record.Role),
		slog.String("created_by", operator.SubjectID))

	return &usecase.CreateInvitationOutput{Record: record}, nil
}

// List returns invitation records for audit, consumed ones included on
// request. Records are never deleted, so this is the full trail.
func (srv *invitationService) List(ctx context.Context, operator *entity.Identity, roles entity.Roles, includeUsed bool) ([]*entity.InvitationRecord, error) {
	if err := srv.authorize(operator, roles); err != nil {
		return nil, err
	}

	records, err := srv.invitations.List(ctx, includeUsed)
	if err != nil {
		srv.log(ctx).Error("Failed to list invitations", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrStoreUnavailable, "failed to list invitations")
	}

	return records, nil
}

func (srv *invitationService) authorize(operator *entity.Identity, roles entity.Roles) error {
	if operator == nil || operator.SubjectID == "" {
		return errors.Wrap(domainerrors.ErrUnauthenticated, "operator identity required")
	}
	for _, role := range operatorRoles {
		if roles.Contains(role) {
			return nil
		}
	}

	return errors.Wrap(domainerrors.ErrForbidden, "operator role required")
}

// generateCode derives a short shared secret from a v4 uuid. Codes are
// compared exactly at redemption, uppercased here only for readability on
// printed invitations.
func (srv *invitationService) generateCode() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	length := srv.cfg.Invitations.CodeLength
	if length > len(raw) {
		length = len(raw)
	}

	return strings.ToUpper(raw[:length])
}
