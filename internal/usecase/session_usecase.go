// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"intranet/internal/domain/entity"
)

// --- Input DTOs ---

// SignInInput carries the provider-issued ID token presented at sign-in,
// plus an optional device token for push notification on role changes.
type SignInInput struct {
	IDToken     string
	DeviceToken string
}

// --- Output DTOs ---

// SignInOutput returns the opaque session id and the initial snapshot.
type SignInOutput struct {
	SessionID string
	Snapshot  entity.SessionSnapshot
}

// SessionUsecase maintains the per-client session observers that merge
// identity-provider events and directory push notifications into the
// single SessionSnapshot every routing decision reads.
type SessionUsecase interface {
	// SignIn verifies the token, ensures a directory entry exists for the
	// subject and starts a role observer for the new session.
	SignIn(ctx context.Context, input SignInInput) (*SignInOutput, error)

	// Snapshot returns the current derived snapshot for a session.
	Snapshot(ctx context.Context, sessionID string) (entity.SessionSnapshot, error)

	// Refresh forces a directory re-read so routing re-evaluates
	// immediately instead of waiting for the next push notification.
	Refresh(ctx context.Context, sessionID string) (entity.SessionSnapshot, error)

	// SetConnectivity records a client-reported connectivity flip.
	SetConnectivity(ctx context.Context, sessionID string, online bool) (entity.SessionSnapshot, error)

	// SignOut tears the session down, cancelling its subscriptions.
	SignOut(ctx context.Context, sessionID string) error

	// Identity returns the authenticated identity bound to a session.
	Identity(ctx context.Context, sessionID string) (*entity.Identity, error)

	// Close tears down every live session. Called on shutdown.
	Close()
}
