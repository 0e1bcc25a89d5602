package handler

import (
	"log/slog"
	"net/http"

	"intranet/internal/delivery/http/response"
	"intranet/internal/domain/entity"
	"intranet/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// SessionHandler holds dependencies for session-related handlers.
type SessionHandler struct {
	sessionUC usecase.SessionUsecase
	routingUC usecase.RoutingUsecase
	logger    *slog.Logger
}

// NewSessionHandler is the constructor for SessionHandler, injected by Fx.
func NewSessionHandler(sessionUC usecase.SessionUsecase, routingUC usecase.RoutingUsecase, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessionUC: sessionUC,
		routingUC: routingUC,
		logger:    logger,
	}
}

type signInRequest struct {
	IDToken     string `json:"idToken" validate:"required"`
	DeviceToken string `json:"deviceToken"`
}

type connectivityRequest struct {
	Online *bool `json:"online" validate:"required"`
}

// identityResponse is the wire shape of an authenticated identity.
type identityResponse struct {
	SubjectID   string `json:"subjectId"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// snapshotResponse is the wire shape of a session snapshot.
type snapshotResponse struct {
	Identity     *identityResponse `json:"identity"`
	Roles        []string          `json:"roles"`
	PrimaryRole  string            `json:"primaryRole"`
	Connectivity string            `json:"connectivity"`
	LoadingPhase string            `json:"loadingPhase"`
}

// signInResponse returns the session id along with the initial snapshot.
type signInResponse struct {
	SessionID string           `json:"sessionId"`
	Snapshot  snapshotResponse `json:"snapshot"`
}

// routeResponse reports the screen the routing policy selected.
type routeResponse struct {
	Outcome string `json:"outcome"`
	Path    string `json:"path"`
}

func toSnapshotResponse(snapshot entity.SessionSnapshot) snapshotResponse {
	out := snapshotResponse{
		Roles:        snapshot.Roles.ToStrings(),
		PrimaryRole:  string(snapshot.Roles.Primary()),
		Connectivity: string(snapshot.Connectivity),
		LoadingPhase: string(snapshot.LoadingPhase),
	}
	if snapshot.Identity != nil {
		out.Identity = &identityResponse{
			SubjectID:   snapshot.Identity.SubjectID,
			Email:       snapshot.Identity.Email,
			DisplayName: snapshot.Identity.DisplayName,
			AvatarURL:   snapshot.Identity.AvatarURL,
		}
	}

	return out
}

// SignIn verifies the presented ID token and opens a session with a live
// role observer.
func (h *SessionHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid sign-in input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.sessionUC.SignIn(c.Request().Context(), usecase.SignInInput{
		IDToken:     req.IDToken,
		DeviceToken: req.DeviceToken,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, signInResponse{
		SessionID: output.SessionID,
		Snapshot:  toSnapshotResponse(output.Snapshot),
	}, "Sesión iniciada")
}

// Snapshot returns the current derived snapshot for a session.
func (h *SessionHandler) Snapshot(c echo.Context) error {
	snapshot, err := h.sessionUC.Snapshot(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toSnapshotResponse(snapshot), "")
}

// Refresh forces a directory re-read for the session.
func (h *SessionHandler) Refresh(c echo.Context) error {
	snapshot, err := h.sessionUC.Refresh(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toSnapshotResponse(snapshot), "")
}

// SetConnectivity records a client-reported connectivity flip.
func (h *SessionHandler) SetConnectivity(c echo.Context) error {
	var req connectivityRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid connectivity input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	snapshot, err := h.sessionUC.SetConnectivity(c.Request().Context(), c.Param("id"), *req.Online)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toSnapshotResponse(snapshot), "")
}

// SignOut tears the session down.
func (h *SessionHandler) SignOut(c echo.Context) error {
	if err := h.sessionUC.SignOut(c.Request().Context(), c.Param("id")); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Sesión cerrada"}, "Sesión cerrada")
}

// Route resolves the screen to render for the session's current snapshot
// and the requested path.
func (h *SessionHandler) Route(c echo.Context) error {
	path := c.QueryParam("path")
	if path == "" {
		return response.BindingError(c, "INVALID_INPUT", "Query parameter 'path' is required")
	}

	snapshot, err := h.sessionUC.Snapshot(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	outcome := h.routingUC.Resolve(snapshot, path)

	return response.Success(c, http.StatusOK, routeResponse{
		Outcome: string(outcome),
		Path:    path,
	}, "")
}
