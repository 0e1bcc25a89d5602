// Package constants holds shared constant values used across layers.
package constants

// Deployment environment names accepted by configuration.
const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

// Pub/Sub provider names accepted by configuration.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// Well-known standalone paths, rendered without the authenticated shell.
const (
	// PathLogin is the public sign-in screen.
	PathLogin = "/login"
	// PathCandidate is the candidate onboarding screen where invitation
	// codes are redeemed.
	PathCandidate = "/candidate"
	// PathHome is the default landing that resolves to the central
	// dashboard for authorized subjects.
	PathHome = "/"
)
