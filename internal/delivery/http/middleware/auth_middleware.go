package middleware

import (
	"strings"

	deliverycontext "intranet/internal/delivery/context"
	"intranet/internal/delivery/http/response"
	"intranet/internal/domain/entity"
	"intranet/internal/domain/service"
	"intranet/internal/usecase"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware verifies the provider-issued ID token carried on each
// request and exposes the resolved identity to handlers.
type AuthMiddleware struct {
	provider    service.IdentityProvider
	directoryUC usecase.DirectoryUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(provider service.IdentityProvider, directoryUC usecase.DirectoryUsecase) *AuthMiddleware {
	return &AuthMiddleware{provider: provider, directoryUC: directoryUC}
}

// Authenticate validates the Bearer ID token against the identity
// provider and stores the identity on the context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "MISSING_TOKEN", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "INVALID_TOKEN_FORMAT", "Invalid token format, must be Bearer token")
		}

		identity, err := m.provider.VerifyIDToken(c.Request().Context(), tokenString)
		if err != nil {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
		}

		c.Set(string(deliverycontext.KeyIdentity), identity)

		return next(c)
	}
}

// LoadRoles resolves the authenticated subject's current role set from
// the directory and stores it on the context. Must run after
// Authenticate.
func (m *AuthMiddleware) LoadRoles(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity := GetIdentity(c)
		if identity == nil {
			return response.Unauthorized(c, "MISSING_IDENTITY", "Authentication required")
		}

		roles, err := m.directoryUC.Roles(c.Request().Context(), identity.SubjectID)
		if err != nil {
			return err
		}

		c.Set("roles", roles)

		return next(c)
	}
}

// GetIdentity returns the identity placed on the context by
// Authenticate, or nil.
func GetIdentity(c echo.Context) *entity.Identity {
	identity, _ := c.Get(string(deliverycontext.KeyIdentity)).(*entity.Identity)

	return identity
}

// GetRoles returns the role set placed on the context by LoadRoles.
func GetRoles(c echo.Context) entity.Roles {
	roles, _ := c.Get("roles").(entity.Roles)

	return roles
}
