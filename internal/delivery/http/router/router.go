// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"intranet/config"
	httpmiddleware "intranet/internal/delivery/http/middleware"
	"intranet/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// RouterParams holds the handlers and middleware the router wires up,
// injected by Fx.
type RouterParams struct {
	fx.In

	Config            *config.Config
	SessionHandler    *handler.SessionHandler
	RedemptionHandler *handler.RedemptionHandler
	InvitationHandler *handler.InvitationHandler
	AuthMiddleware    *httpmiddleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	cfg               *config.Config
	sessionHandler    *handler.SessionHandler
	redemptionHandler *handler.RedemptionHandler
	invitationHandler *handler.InvitationHandler
	authMiddleware    *httpmiddleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		cfg:               params.Config,
		sessionHandler:    params.SessionHandler,
		redemptionHandler: params.RedemptionHandler,
		invitationHandler: params.InvitationHandler,
		authMiddleware:    params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	if r.cfg.Metrics != nil && r.cfg.Metrics.Enabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	// Session lifecycle: sign-in opens a session, the rest operate on
	// the opaque session id it returned.
	sessionGroup := e.Group("/session")
	{
		sessionGroup.POST("", r.sessionHandler.SignIn)
		sessionGroup.GET("/:id", r.sessionHandler.Snapshot)
		sessionGroup.POST("/:id/refresh", r.sessionHandler.Refresh)
		sessionGroup.PUT("/:id/connectivity", r.sessionHandler.SetConnectivity)
		sessionGroup.GET("/:id/route", r.sessionHandler.Route)
		sessionGroup.DELETE("/:id", r.sessionHandler.SignOut)
	}

	// Redemption requires a verified identity but no pre-existing role.
	redeemGroup := e.Group("/redeem")
	redeemGroup.Use(r.authMiddleware.Authenticate)
	{
		redeemGroup.POST("", r.redemptionHandler.Redeem)
	}

	// Invitation administration requires an operator role; the usecase
	// authorizes against the loaded role set.
	invitationGroup := e.Group("/invitations")
	invitationGroup.Use(r.authMiddleware.Authenticate)
	invitationGroup.Use(r.authMiddleware.LoadRoles)
	{
		invitationGroup.POST("", r.invitationHandler.Create)
		invitationGroup.GET("", r.invitationHandler.List)
	}
}
