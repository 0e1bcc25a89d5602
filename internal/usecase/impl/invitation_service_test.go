package impl

import (
	"context"
	"testing"

	"intranet/config"
	"intranet/internal/domain/entity"
	domainerrors "intranet/internal/domain/errors"
	"intranet/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invitationFixtures struct {
	service     usecase.InvitationAdminUsecase
	invitations *fakeInvitationRepo
}

func createTestInvitationService(t *testing.T) invitationFixtures {
	t.Helper()

	cfg := &config.Config{
		Invitations: &config.InvitationsConfig{CodeLength: 8},
	}
	invitations := newFakeInvitationRepo()

	return invitationFixtures{
		service:     NewInvitationService(invitations, cfg, testLogger()),
		invitations: invitations,
	}
}

func operatorIdentity() *entity.Identity {
	return &entity.Identity{SubjectID: "operator-1", Email: "rrhh@example.gob"}
}

func TestInvitationService_Create_GeneratesCode(t *testing.T) {
	fx := createTestInvitationService(t)

	output, err := fx.service.Create(context.Background(), operatorIdentity(), entity.Roles{entity.RoleHR}, usecase.CreateInvitationInput{
		DNI:  "12345678",
		Role: entity.RoleCollaborator,
	})
	require.NoError(t, err)

	record := output.Record
	assert.NotEmpty(t, record.InvitationID)
	assert.Len(t, record.Code, 8)
	assert.Equal(t, "12345678", record.DNI)
	assert.Equal(t, "operator-1", record.CreatedBy)
	assert.False(t, record.Used)
}

func TestInvitationService_Create_KeepsExplicitCode(t *testing.T) {
	fx := createTestInvitationService(t)

	output, err := fx.service.Create(context.Background(), operatorIdentity(), entity.Roles{entity.RoleAdmin}, usecase.CreateInvitationInput{
		DNI:  "12345678",
		Role: entity.RoleData,
		Code: "WELCOME1",
	})
	require.NoError(t, err)
	assert.Equal(t, "WELCOME1", output.Record.Code)
}

func TestInvitationService_Create_Authorization(t *testing.T) {
	fx := createTestInvitationService(t)
	input := usecase.CreateInvitationInput{DNI: "12345678", Role: entity.RoleCollaborator}

	tests := []struct {
		name     string
		operator *entity.Identity
		roles    entity.Roles
		wantErr  error
	}{
		{name: "nil operator", operator: nil, roles: entity.Roles{entity.RoleRoot}, wantErr: domainerrors.ErrUnauthenticated},
		{name: "collaborator is not an operator", operator: operatorIdentity(), roles: entity.Roles{entity.RoleCollaborator}, wantErr: domainerrors.ErrForbidden},
		{name: "no roles", operator: operatorIdentity(), roles: entity.Roles{}, wantErr: domainerrors.ErrForbidden},
		{name: "placeholder role", operator: operatorIdentity(), roles: entity.Roles{entity.RolePendingVerification}, wantErr: domainerrors.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.service.Create(context.Background(), tt.operator, tt.roles, input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestInvitationService_Create_RejectsUngrantableRoles(t *testing.T) {
	fx := createTestInvitationService(t)

	for _, role := range []entity.Role{entity.RolePendingVerification, entity.RoleNonePlaceholder, entity.Role("made_up")} {
		_, err := fx.service.Create(context.Background(), operatorIdentity(), entity.Roles{entity.RoleRoot}, usecase.CreateInvitationInput{
			DNI:  "12345678",
			Role: role,
		})
		assert.ErrorIs(t, err, domainerrors.ErrRoleNotGrantable, "role %q", role)
	}
}

func TestInvitationService_Create_RequiresDNI(t *testing.T) {
	fx := createTestInvitationService(t)

	_, err := fx.service.Create(context.Background(), operatorIdentity(), entity.Roles{entity.RoleHR}, usecase.CreateInvitationInput{
		Role: entity.RoleCollaborator,
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidArgument)
}

func TestInvitationService_List_FiltersConsumed(t *testing.T) {
	fx := createTestInvitationService(t)
	ctx := context.Background()
	roles := entity.Roles{entity.RoleAdmin}

	first, err := fx.service.Create(ctx, operatorIdentity(), roles, usecase.CreateInvitationInput{
		DNI: "11111111", Role: entity.RoleCollaborator,
	})
	require.NoError(t, err)
	_, err = fx.service.Create(ctx, operatorIdentity(), roles, usecase.CreateInvitationInput{
		DNI: "22222222", Role: entity.RoleCollaborator,
	})
	require.NoError(t, err)

	require.NoError(t, fx.invitations.MarkUsed(ctx, first.Record.InvitationID, "subject-1"))

	unused, err := fx.service.List(ctx, operatorIdentity(), roles, false)
	require.NoError(t, err)
	assert.Len(t, unused, 1)

	all, err := fx.service.List(ctx, operatorIdentity(), roles, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
