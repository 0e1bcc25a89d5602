package handler

import (
	"log/slog"
	"net/http"
	"time"

	"intranet/internal/delivery/http/middleware"
	"intranet/internal/delivery/http/response"
	"intranet/internal/domain/entity"
	"intranet/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// InvitationHandler exposes the operator-facing invitation endpoints.
type InvitationHandler struct {
	uc     usecase.InvitationAdminUsecase
	logger *slog.Logger
}

// NewInvitationHandler is the constructor for InvitationHandler, injected by Fx.
func NewInvitationHandler(uc usecase.InvitationAdminUsecase, logger *slog.Logger) *InvitationHandler {
	return &InvitationHandler{uc: uc, logger: logger}
}

type createInvitationRequest struct {
	DNI  string `json:"dni" validate:"required"`
	Role string `json:"role" validate:"required"`
	Code string `json:"code"`
}

type invitationResponse struct {
	InvitationID string     `json:"invitationId"`
	DNI          string     `json:"dni"`
	Code         string     `json:"code"`
	Role         string     `json:"role"`
	CreatedBy    string     `json:"createdBy"`
	CreatedAt    time.Time  `json:"createdAt"`
	Used         bool       `json:"used"`
	UsedBy       string     `json:"usedBy,omitempty"`
	UsedAt       *time.Time `json:"usedAt,omitempty"`
}

func toInvitationResponse(record *entity.InvitationRecord) invitationResponse {
	return invitationResponse{
		InvitationID: record.InvitationID,
		DNI:          record.DNI,
		Code:         record.Code,
		Role:         string(record.GrantedRole()),
		CreatedBy:    record.CreatedBy,
		CreatedAt:    record.CreatedAt,
		Used:         record.Used,
		UsedBy:       record.UsedBy,
		UsedAt:       record.UsedAt,
	}
}

// Create pre-provisions an invitation for a candidate.
func (h *InvitationHandler) Create(c echo.Context) error {
	operator := middleware.GetIdentity(c)
	roles := middleware.GetRoles(c)

	var req createInvitationRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid invitation input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Create(c.Request().Context(), operator, roles, usecase.CreateInvitationInput{
		DNI:  req.DNI,
		Role: entity.Role(req.Role),
		Code: req.Code,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toInvitationResponse(output.Record), "Invitación creada")
}

// List returns invitation records for auditing. Used records are
// included only when ?includeUsed=true.
func (h *InvitationHandler) List(c echo.Context) error {
	operator := middleware.GetIdentity(c)
	roles := middleware.GetRoles(c)

	includeUsed := c.QueryParam("includeUsed") == "true"

	records, err := h.uc.List(c.Request().Context(), operator, roles, includeUsed)
	if err != nil {
		return errors.WithStack(err)
	}

	out := make([]invitationResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toInvitationResponse(record))
	}

	return response.Success(c, http.StatusOK, out, "")
}
