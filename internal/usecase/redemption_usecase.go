package usecase

import (
	"context"

	"intranet/internal/domain/entity"
)

// RedeemInput carries the invitation credential pair typed by a
// freshly-authenticated identity.
type RedeemInput struct {
	DNI  string
	Code string
}

// RedeemOutput reports the role granted by a successful redemption.
type RedeemOutput struct {
	InvitationID string
	GrantedRole  entity.Role
	Roles        entity.Roles
}

// RedemptionUsecase converts a (dni, code) pair into a granted role,
// exactly once per invitation record.
type RedemptionUsecase interface {
	// Redeem validates the code, atomically marks the invitation used and
	// provisions the directory entry for the identity.
	Redeem(ctx context.Context, identity *entity.Identity, input RedeemInput) (*RedeemOutput, error)
}
