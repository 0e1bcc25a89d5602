package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"intranet/config"
	"intranet/internal/delivery/http/validator"
	"intranet/internal/domain/entity"
	domainerrors "intranet/internal/domain/errors"
	"intranet/internal/usecase"
	"intranet/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSessionUsecase serves a single fixed session snapshot.
type stubSessionUsecase struct {
	sessionID string
	snapshot  entity.SessionSnapshot
}

func (s *stubSessionUsecase) SignIn(ctx context.Context, input usecase.SignInInput) (*usecase.SignInOutput, error) {
	return &usecase.SignInOutput{SessionID: s.sessionID, Snapshot: s.snapshot}, nil
}

func (s *stubSessionUsecase) Snapshot(ctx context.Context, sessionID string) (entity.SessionSnapshot, error) {
	if sessionID != s.sessionID {
		return entity.SessionSnapshot{}, errors.WithStack(domainerrors.ErrSessionNotFound)
	}

	return s.snapshot, nil
}

func (s *stubSessionUsecase) Refresh(ctx context.Context, sessionID string) (entity.SessionSnapshot, error) {
	return s.Snapshot(ctx, sessionID)
}

func (s *stubSessionUsecase) SetConnectivity(ctx context.Context, sessionID string, online bool) (entity.SessionSnapshot, error) {
	return s.Snapshot(ctx, sessionID)
}

func (s *stubSessionUsecase) SignOut(ctx context.Context, sessionID string) error {
	return nil
}

func (s *stubSessionUsecase) Identity(ctx context.Context, sessionID string) (*entity.Identity, error) {
	return s.snapshot.Identity, nil
}

func (s *stubSessionUsecase) Close() {}

func newRouteTestContext(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = validator.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("session-1")

	return c, rec
}

func TestSessionHandler_Route_AuthorizedHomeLandsOnDashboard(t *testing.T) {
	sessionUC := &stubSessionUsecase{
		sessionID: "session-1",
		snapshot: entity.SessionSnapshot{
			Identity:     &entity.Identity{SubjectID: "subject-1"},
			Roles:        entity.Roles{entity.RoleCollaborator},
			Connectivity: entity.ConnectivityOnline,
			LoadingPhase: entity.PhaseReady,
		},
	}
	handler := NewSessionHandler(sessionUC, impl.NewRoutingService(&config.Config{}), slog.Default())

	c, rec := newRouteTestContext(t, "/session/session-1/route?path=/")

	require.NoError(t, handler.Route(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"outcome":"central_dashboard"`)
}

func TestSessionHandler_Route_UnauthorizedSubject(t *testing.T) {
	sessionUC := &stubSessionUsecase{
		sessionID: "session-1",
		snapshot: entity.SessionSnapshot{
			Identity:     &entity.Identity{SubjectID: "subject-1"},
			Roles:        entity.Roles{},
			Connectivity: entity.ConnectivityOnline,
			LoadingPhase: entity.PhaseReady,
		},
	}
	handler := NewSessionHandler(sessionUC, impl.NewRoutingService(&config.Config{}), slog.Default())

	c, rec := newRouteTestContext(t, "/session/session-1/route?path=/documents")

	require.NoError(t, handler.Route(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"outcome":"unauthorized"`)
}

func TestSessionHandler_Route_MissingPathParam(t *testing.T) {
	handler := NewSessionHandler(&stubSessionUsecase{sessionID: "session-1"}, impl.NewRoutingService(&config.Config{}), slog.Default())

	c, rec := newRouteTestContext(t, "/session/session-1/route")

	require.NoError(t, handler.Route(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionHandler_Snapshot_SerializesRoles(t *testing.T) {
	sessionUC := &stubSessionUsecase{
		sessionID: "session-1",
		snapshot: entity.SessionSnapshot{
			Identity:     &entity.Identity{SubjectID: "subject-1", Email: "ana@example.gob"},
			Roles:        entity.Roles{entity.RoleHR, entity.RoleCollaborator},
			Connectivity: entity.ConnectivityOnline,
			LoadingPhase: entity.PhaseReady,
		},
	}
	handler := NewSessionHandler(sessionUC, impl.NewRoutingService(&config.Config{}), slog.Default())

	c, rec := newRouteTestContext(t, "/session/session-1")

	require.NoError(t, handler.Snapshot(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"primaryRole":"hr"`)
	assert.Contains(t, body, `"loadingPhase":"ready"`)
	assert.Contains(t, body, `"subjectId":"subject-1"`)
}
