package handler

import (
	"log/slog"
	"net/http"

	"intranet/internal/delivery/http/middleware"
	"intranet/internal/delivery/http/response"
	"intranet/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// RedemptionHandler exposes the invitation-code redemption endpoint.
type RedemptionHandler struct {
	uc     usecase.RedemptionUsecase
	logger *slog.Logger
}

// NewRedemptionHandler is the constructor for RedemptionHandler, injected by Fx.
func NewRedemptionHandler(uc usecase.RedemptionUsecase, logger *slog.Logger) *RedemptionHandler {
	return &RedemptionHandler{uc: uc, logger: logger}
}

type redeemRequest struct {
	DNI  string `json:"dni" validate:"required"`
	Code string `json:"code" validate:"required"`
}

type redeemResponse struct {
	InvitationID string   `json:"invitationId"`
	GrantedRole  string   `json:"grantedRole"`
	Roles        []string `json:"roles"`
}

// Redeem converts a (dni, code) pair into a granted role for the
// authenticated identity.
func (h *RedemptionHandler) Redeem(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	var req redeemRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid redemption input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Redeem(c.Request().Context(), identity, usecase.RedeemInput{
		DNI:  req.DNI,
		Code: req.Code,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, redeemResponse{
		InvitationID: output.InvitationID,
		GrantedRole:  string(output.GrantedRole),
		Roles:        output.Roles.ToStrings(),
	}, "Invitación canjeada")
}
