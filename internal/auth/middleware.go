package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-security/internal/domain"
	"github.com/spec-kit/account-security/internal/domain/user"
	"github.com/spec-kit/account-security/internal/service"
	apperrors "github.com/spec-kit/account-security/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User  service.UserView
	Token *Claims
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens  *TokenManager
	queries *service.QueryBus
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, queries *service.QueryBus) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, queries: queries}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	view, err := service.Ask[service.UserView](c.UserContext(), m.queries, service.FindUser{UserID: claims.UserID})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperrors.NewUnauthorized("user not found")
		}
		return err
	}
	if view.State == string(user.StateDeleted) {
		return apperrors.NewUnauthorized("account deleted")
	}

	c.Locals(principalKey, &Principal{User: view, Token: claims})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated user.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
