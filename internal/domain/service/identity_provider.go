package service

import (
	"context"

	"intranet/internal/domain/entity"
)

// IdentityProvider wraps the external federated sign-in flow. The provider
// owns the identity lifecycle; this system only verifies tokens it issued
// and reacts to state changes.
type IdentityProvider interface {
	// VerifyIDToken validates a provider-issued ID token and returns the
	// identity it asserts.
	VerifyIDToken(ctx context.Context, idToken string) (*entity.Identity, error)
}
