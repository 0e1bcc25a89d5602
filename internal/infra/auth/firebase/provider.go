// Package firebase adapts the Firebase Auth federated sign-in flow to the
// domain IdentityProvider interface.
package firebase

import (
	"context"
	"log/slog"

	"intranet/config"
	"intranet/internal/domain/entity"
	"intranet/internal/domain/service"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// identityProvider verifies provider-issued ID tokens and maps them to the
// opaque (subjectId, email, displayName) triple the rest of the system
// consumes.
type identityProvider struct {
	client *auth.Client
	logger *slog.Logger
}

// NewIdentityProvider creates the Firebase Auth adapter.
func NewIdentityProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.IdentityProvider, error) {
	fbCfg := cfg.Firebase
	if fbCfg == nil || fbCfg.ProjectID == "" {
		return nil, errors.New("firebase project ID is required")
	}

	if fbCfg.AuthEmulatorHost != "" {
		logger.Warn("Using Firebase Auth emulator token verification",
			slog.String("emulator_host", fbCfg.AuthEmulatorHost))

		return newEmulatorProvider(logger), nil
	}

	var opts []option.ClientOption
	if fbCfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(fbCfg.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: fbCfg.ProjectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Firebase app")
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get auth client")
	}

	return &identityProvider{
		client: client,
		logger: logger,
	}, nil
}

// VerifyIDToken validates a provider-issued ID token and returns the
// identity it asserts.
func (p *identityProvider) VerifyIDToken(ctx context.Context, idToken string) (*entity.Identity, error) {
	token, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, errors.Wrap(err, "id token verification failed")
	}

	identity := identityFromClaims(token.UID, token.Claims)

	p.logger.Debug("ID token verified",
		slog.String("subject_id", identity.SubjectID),
		slog.String("email", identity.Email))

	return identity, nil
}

func identityFromClaims(uid string, claims map[string]any) *entity.Identity {
	identity := &entity.Identity{SubjectID: uid}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		identity.DisplayName = name
	}
	if picture, ok := claims["picture"].(string); ok {
		identity.AvatarURL = picture
	}

	return identity
}
