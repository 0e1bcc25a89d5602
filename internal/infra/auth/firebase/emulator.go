package firebase

import (
	"context"
	"log/slog"

	"intranet/internal/domain/entity"
	"intranet/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// emulatorProvider accepts the unsigned tokens the Firebase Auth emulator
// issues in development. Claims are extracted without signature
// verification; never enabled outside emulator setups.
type emulatorProvider struct {
	parser *jwt.Parser
	logger *slog.Logger
}

func newEmulatorProvider(logger *slog.Logger) service.IdentityProvider {
	return &emulatorProvider{
		parser: jwt.NewParser(),
		logger: logger,
	}
}

// VerifyIDToken extracts the identity from an emulator-issued token.
func (p *emulatorProvider) VerifyIDToken(_ context.Context, idToken string) (*entity.Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := p.parser.ParseUnverified(idToken, claims); err != nil {
		return nil, errors.Wrap(err, "failed to parse emulator token")
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, errors.New("emulator token has no subject")
	}

	identity := identityFromClaims(subject, claims)

	p.logger.Debug("Emulator token accepted", slog.String("subject_id", identity.SubjectID))

	return identity, nil
}
