package middleware

import (
	"go-elms/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// PermissionChecker answers whether a role holds a named permission.
type PermissionChecker interface {
	Allowed(role string, permission string) (bool, error)
}

// KnownPermissions is implemented by checkers that can validate permission
// names up front.
type KnownPermissions interface {
	Known(permission string) bool
}

// RequirePermission rejects the request unless the caller's role holds the
// permission. It panics during route setup when the checker does not know the
// permission name.
func RequirePermission(checker PermissionChecker, requiredPermission string) fiber.Handler {
	if known, ok := checker.(KnownPermissions); ok && !known.Known(requiredPermission) {
		panic("middleware: unknown permission " + requiredPermission)
	}
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"code":    "UNAUTHORIZED",
				"message": "Unauthorized",
			})
		}

		allowed, err := checker.Allowed(claims.Role, requiredPermission)
		if err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"code":    "PERMISSION_DENIED",
				"message": err.Error(),
			})
		}

		if !allowed {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"code":    "PERMISSION_DENIED",
				"message": "Forbidden: " + requiredPermission + " required",
			})
		}

		return c.Next()
	}
}
