// Package impl contains the application-specific business rules implementations.
package impl

import (
	"slices"

	"intranet/config"
	"intranet/internal/domain/constants"
	"intranet/internal/domain/entity"
	"intranet/internal/usecase"
)

// routingService implements the RoutingUsecase interface as a pure decision
// table over (snapshot, currentPath). It holds only immutable
// configuration, so invoking it twice with the same inputs always yields
// the same outcome.
type routingService struct {
	standalonePaths []string
}

// NewRoutingService is the constructor for routingService.
func NewRoutingService(cfg *config.Config) usecase.RoutingUsecase {
	paths := []string{constants.PathLogin, constants.PathCandidate}
	if cfg != nil && cfg.Session != nil && len(cfg.Session.StandalonePaths) > 0 {
		paths = slices.Clone(cfg.Session.StandalonePaths)
	}

	return &routingService{standalonePaths: paths}
}

// Resolve evaluates the decision table in order; first match wins.
func (srv *routingService) Resolve(snapshot entity.SessionSnapshot, currentPath string) usecase.RenderOutcome {
	// 1. Still resolving identity or role state.
	if snapshot.LoadingPhase == entity.PhaseBooting || snapshot.LoadingPhase == entity.PhaseResolving {
		return usecase.OutcomeLoading
	}

	// 2. No signed-in identity: public paths get the sign-in screen, any
	// other path renders loading while the redirect is in flight.
	if !snapshot.Authenticated() {
		if srv.isStandalone(currentPath) {
			return usecase.OutcomeSignIn
		}

		return usecase.OutcomeLoading
	}

	// 3. Registered but unauthorized: every held role is a placeholder, or
	// the set is empty. Standalone paths still render (the onboarding form
	// lives there); everything else gets an explicit unauthorized screen.
	if !snapshot.Roles.HasAuthorized() {
		if srv.isStandalone(currentPath) {
			return usecase.OutcomePassThrough
		}
		// A connectivity blip must not lock the user out: with no cached
		// roles while offline the denial is suppressed until roles resolve.
		if snapshot.Connectivity == entity.ConnectivityOffline && len(snapshot.Roles) == 0 {
			return usecase.OutcomeLoading
		}

		return usecase.OutcomeUnauthorized
	}

	// 4. Authorized: the bare home path lands on the central dashboard;
	// an explicitly requested route is never overridden.
	if currentPath == constants.PathHome {
		return usecase.OutcomeCentralDashboard
	}

	return usecase.OutcomePassThrough
}

func (srv *routingService) isStandalone(path string) bool {
	return slices.Contains(srv.standalonePaths, path)
}
