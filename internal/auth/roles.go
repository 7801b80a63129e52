package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fieldserve/helpdesk-service/internal/domain"
	apperrors "github.com/fieldserve/helpdesk-service/pkg/util"
)

// RequireRole ensures the principal holds one of the allowed roles. With no
// arguments it only requires authentication.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[user.Role]; !exists {
			return apperrors.NewForbidden()
		}
		return c.Next()
	}
}
