package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	apperrors "github.com/spec-kit/account-security/pkg/util"
)

// RequireSelf lets a request through only when the route parameter names the
// authenticated user. Malformed ids are left to the handler.
func RequireSelf(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		id, err := uuid.Parse(c.Params(param))
		if err != nil {
			return c.Next()
		}
		if id != principal.User.ID {
			return apperrors.NewForbidden("account belongs to another user")
		}
		return c.Next()
	}
}
