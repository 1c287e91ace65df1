package auth

import (
	"github.com/gofiber/fiber/v2"
)

// RequirePermission ensures the caller's role may perform action on resource.
func RequirePermission(action Action, resource Resource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if err := Authorize(principal, action, resource); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal was attached by the auth middleware.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		return c.Next()
	}
}
