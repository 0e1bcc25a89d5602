package entity

// LoadingPhase tells how far the session observer has progressed in
// resolving the active subject's role state.
type LoadingPhase string

const (
	// PhaseBooting means no identity-provider response has arrived yet.
	PhaseBooting LoadingPhase = "booting"
	// PhaseResolving means an identity is present but the directory
	// subscription has not delivered its first value.
	PhaseResolving LoadingPhase = "resolving"
	// PhaseReady means the directory subscription has delivered at least
	// one value, including the absent-document case.
	PhaseReady LoadingPhase = "ready"
)

// Connectivity is the observer's view of the transport to the stores.
type Connectivity string

const (
	// ConnectivityOnline means store subscriptions are healthy.
	ConnectivityOnline Connectivity = "online"
	// ConnectivityOffline means connectivity was lost; the snapshot
	// freezes at the last-known roles until it recovers.
	ConnectivityOffline Connectivity = "offline"
)

// SessionSnapshot is the derived, always-current session state every
// routing decision reads. It is recomputed on every identity-provider
// event and every directory push notification, exists only in memory and
// has no independent lifecycle.
type SessionSnapshot struct {
	Identity     *Identity
	Roles        Roles
	Connectivity Connectivity
	LoadingPhase LoadingPhase
}

// Authenticated reports whether the snapshot carries a signed-in identity.
func (s SessionSnapshot) Authenticated() bool {
	return s.Identity != nil
}
