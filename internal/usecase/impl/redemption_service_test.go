package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"intranet/internal/domain/entity"
	domainerrors "intranet/internal/domain/errors"
	"intranet/internal/domain/service"
	"intranet/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type redemptionFixtures struct {
	service     usecase.RedemptionUsecase
	invitations *fakeInvitationRepo
	directory   *fakeDirectoryRepo
	publisher   *recordPublisher
	metrics     *recordMetrics
}

func createTestRedemptionService(t *testing.T) redemptionFixtures {
	t.Helper()

	invitations := newFakeInvitationRepo()
	directory := newFakeDirectoryRepo()
	publisher := &recordPublisher{}
	metrics := newRecordMetrics()
	svc := NewRedemptionService(invitations, directory, publisher, metrics, testLogger())

	return redemptionFixtures{
		service:     svc,
		invitations: invitations,
		directory:   directory,
		publisher:   publisher,
		metrics:     metrics,
	}
}

func seedInvitation(t *testing.T, fx redemptionFixtures, dni, code string, role entity.Role) string {
	t.Helper()

	id, err := fx.invitations.Create(context.Background(), &entity.InvitationRecord{
		DNI:       dni,
		Code:      code,
		Role:      role.String(),
		CreatedBy: "operator-1",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	return id
}

func TestRedemptionService_Redeem_GrantsRole(t *testing.T) {
	fx := createTestRedemptionService(t)
	ctx := context.Background()
	invitationID := seedInvitation(t, fx, "12345678", "ABCD1234", entity.RoleCollaborator)

	identity := &entity.Identity{SubjectID: "subject-1", Email: "ana@example.gob"}
	output, err := fx.service.Redeem(ctx, identity, usecase.RedeemInput{DNI: "12345678", Code: "ABCD1234"})
	require.NoError(t, err)

	assert.Equal(t, invitationID, output.InvitationID)
	assert.Equal(t, entity.RoleCollaborator, output.GrantedRole)
	assert.True(t, output.Roles.Contains(entity.RoleCollaborator))

	// The record is consumed with redeemer and timestamp.
	record := fx.invitations.get(invitationID)
	require.NotNil(t, record)
	assert.True(t, record.Used)
	assert.Equal(t, "subject-1", record.UsedBy)
	require.NotNil(t, record.UsedAt)

	// The directory entry carries the granted role and the dni.
	entry, err := fx.directory.Get(ctx, "subject-1")
	require.NoError(t, err)
	assert.Equal(t, "12345678", entry.DNI)
	assert.True(t, entry.RoleSet().Contains(entity.RoleCollaborator))

	// Both events went out.
	events := fx.publisher.published()
	require.Len(t, events, 2)
	assert.Equal(t, service.EventInvitationRedeemed, events[0].Type)
	assert.Equal(t, service.EventRoleChanged, events[1].Type)

	assert.Equal(t, 1, fx.metrics.outcome("ok"))
}

func TestRedemptionService_Redeem_PreservesExistingRoles(t *testing.T) {
	fx := createTestRedemptionService(t)
	ctx := context.Background()
	seedInvitation(t, fx, "12345678", "ABCD1234", entity.RoleData)

	require.NoError(t, fx.directory.Create(ctx, &entity.DirectoryEntry{
		SubjectID: "subject-1",
		Roles:     []string{"collaborator"},
		Email:     "ana@example.gob",
	}))

	identity := &entity.Identity{SubjectID: "subject-1"}
	output, err := fx.service.Redeem(ctx, identity, usecase.RedeemInput{DNI: "12345678", Code: "ABCD1234"})
	require.NoError(t, err)

	assert.True(t, output.Roles.Contains(entity.RoleCollaborator))
	assert.True(t, output.Roles.Contains(entity.RoleData))

	entry, err := fx.directory.Get(ctx, "subject-1")
	require.NoError(t, err)
	// The merge patch must not clobber unrelated profile fields.
	assert.Equal(t, "ana@example.gob", entry.Email)
}

func TestRedemptionService_Redeem_WrongCredentials(t *testing.T) {
	fx := createTestRedemptionService(t)
	ctx := context.Background()
	seedInvitation(t, fx, "12345678", "ABCD1234", entity.RoleCollaborator)
	identity := &entity.Identity{SubjectID: "subject-1"}

	tests := []struct {
		name string
		dni  string
		code string
	}{
		{name: "wrong code", dni: "12345678", code: "WRONG"},
		{name: "wrong dni", dni: "99999999", code: "ABCD1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.service.Redeem(ctx, identity, usecase.RedeemInput{DNI: tt.dni, Code: tt.code})
			assert.ErrorIs(t, err, domainerrors.ErrInvitationNotFoundOrConsumed)
		})
	}
}

func TestRedemptionService_Redeem_ValidationAndAuth(t *testing.T) {
	fx := createTestRedemptionService(t)
	ctx := context.Background()

	_, err := fx.service.Redeem(ctx, nil, usecase.RedeemInput{DNI: "12345678", Code: "ABCD1234"})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	identity := &entity.Identity{SubjectID: "subject-1"}
	_, err = fx.service.Redeem(ctx, identity, usecase.RedeemInput{DNI: "  ", Code: "ABCD1234"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidArgument)

	_, err = fx.service.Redeem(ctx, identity, usecase.RedeemInput{DNI: "12345678", Code: ""})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidArgument)
}

func TestRedemptionService_Redeem_SecondAttemptSeesConsumed(t *testing.T) {
	fx := createTestRedemptionService(t)
	ctx := context.Background()
	seedInvitation(t, fx, "12345678", "ABCD1234", entity.RoleCollaborator)

	first := &entity.Identity{SubjectID: "subject-1"}
	_, err := fx.service.Redeem(ctx, first, usecase.RedeemInput{DNI: "12345678", Code: "ABCD1234"})
	require.NoError(t, err)

	// The same answer regardless of who retries: consumed and unknown
	// collapse into one response.
	second := &entity.Identity{SubjectID: "subject-2"}
	_, err = fx.service.Redeem(ctx, second, usecase.RedeemInput{DNI: "12345678", Code: "ABCD1234"})
	assert.ErrorIs(t, err, domainerrors.ErrInvitationNotFoundOrConsumed)
}

func TestRedemptionService_Redeem_AtMostOnceUnderConcurrency(t *testing.T) {
	fx := createTestRedemptionService(t)
	ctx := context.Background()
	invitationID := seedInvitation(t, fx, "12345678", "ABCD1234", entity.RoleCollaborator)

	const racers = 16
	var wg sync.WaitGroup
	results := make([]error, racers)
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			identity := &entity.Identity{SubjectID: "subject-1"}
			_, results[i] = fx.service.Redeem(ctx, identity, usecase.RedeemInput{DNI: "12345678", Code: "ABCD1234"})
		}()
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++

			continue
		}
		assert.ErrorIs(t, err, domainerrors.ErrInvitationNotFoundOrConsumed)
	}
	assert.Equal(t, 1, successes)

	record := fx.invitations.get(invitationID)
	require.NotNil(t, record)
	assert.True(t, record.Used)
}

func TestRedemptionService_Redeem_PartialRedemptionSurfaces(t *testing.T) {
	fx := createTestRedemptionService(t)
	ctx := context.Background()
	invitationID := seedInvitation(t, fx, "12345678", "ABCD1234", entity.RoleCollaborator)

	fx.directory.patchErr = errors.New("store write rejected")

	identity := &entity.Identity{SubjectID: "subject-1"}
	_, err := fx.service.Redeem(ctx, identity, usecase.RedeemInput{DNI: "12345678", Code: "ABCD1234"})
	assert.ErrorIs(t, err, domainerrors.ErrPartialRedemption)

	// The invitation stays consumed: no auto-retry may resurrect it.
	record := fx.invitations.get(invitationID)
	require.NotNil(t, record)
	assert.True(t, record.Used)
	assert.Equal(t, 1, fx.metrics.outcome("partial"))
}

func TestRedemptionService_Redeem_LookupFailure(t *testing.T) {
	fx := createTestRedemptionService(t)
	ctx := context.Background()
	fx.invitations.findErr = errors.New("store offline")

	identity := &entity.Identity{SubjectID: "subject-1"}
	_, err := fx.service.Redeem(ctx, identity, usecase.RedeemInput{DNI: "12345678", Code: "ABCD1234"})
	assert.ErrorIs(t, err, domainerrors.ErrStoreUnavailable)
}

func TestRedemptionService_Redeem_PublishFailureIsBestEffort(t *testing.T) {
	fx := createTestRedemptionService(t)
	ctx := context.Background()
	seedInvitation(t, fx, "12345678", "ABCD1234", entity.RoleCollaborator)
	fx.publisher.err = errors.New("broker unreachable")

	identity := &entity.Identity{SubjectID: "subject-1"}
	_, err := fx.service.Redeem(ctx, identity, usecase.RedeemInput{DNI: "12345678", Code: "ABCD1234"})
	require.NoError(t, err)
	assert.Equal(t, 1, fx.metrics.outcome("ok"))
}
