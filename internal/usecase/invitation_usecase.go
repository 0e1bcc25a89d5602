package usecase

import (
	"context"

	"intranet/internal/domain/entity"
)

// CreateInvitationInput defines the data an operator supplies when
// pre-provisioning an invitation. Code is optional; one is generated when
// omitted.
type CreateInvitationInput struct {
	DNI  string
	Role entity.Role
	Code string
}

// CreateInvitationOutput returns the persisted record, code included, so
// the operator can hand the credential pair to the candidate.
type CreateInvitationOutput struct {
	Record *entity.InvitationRecord
}

// InvitationAdminUsecase covers the operator-side lifecycle of invitation
// records: creation and audit listing. Only subjects holding an operator
// role (root, admin, hr) may call these.
type InvitationAdminUsecase interface {
	Create(ctx context.Context, operator *entity.Identity, operatorRoles entity.Roles, input CreateInvitationInput) (*CreateInvitationOutput, error)
	List(ctx context.Context, operator *entity.Identity, operatorRoles entity.Roles, includeUsed bool) ([]*entity.InvitationRecord, error)
}
