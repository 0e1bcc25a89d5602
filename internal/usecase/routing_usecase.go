package usecase

import (
	"intranet/internal/domain/entity"
)

// RenderOutcome is the fixed set of screens the routing policy can select.
type RenderOutcome string

const (
	// OutcomeLoading renders a loading indicator while state resolves.
	OutcomeLoading RenderOutcome = "loading"
	// OutcomeSignIn renders the public sign-in screen.
	OutcomeSignIn RenderOutcome = "sign_in"
	// OutcomeUnauthorized renders an explicit unauthorized screen, never a
	// blank page.
	OutcomeUnauthorized RenderOutcome = "unauthorized"
	// OutcomeCentralDashboard renders the default landing dashboard.
	OutcomeCentralDashboard RenderOutcome = "central_dashboard"
	// OutcomePassThrough renders whatever the requested route holds.
	OutcomePassThrough RenderOutcome = "pass_through"
)

// RoutingUsecase decides which screen a client may see for a given
// snapshot and path. Implementations must be pure: no side effects, no
// hidden state, same outcome for the same inputs.
type RoutingUsecase interface {
	Resolve(snapshot entity.SessionSnapshot, currentPath string) RenderOutcome
}
