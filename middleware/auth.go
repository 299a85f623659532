package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware extracts the identity headers set by the gateway.
// X-User-ID is the acting account (a parent or a child device); X-User-Role
// is "parent" or "child". Secured routes under /s/ require a user id.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		role := c.Get("X-User-Role")

		if userID == "" {
			log.Printf("❌ [USER_CTX] X-User-ID required but missing on secured route: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID — request must come through gateway with auth context",
			})
		}
		if role == "" {
			role = "child"
		}

		c.Locals("user_id", userID)
		c.Locals("user_role", role)
		return c.Next()
	}
}

// RequireParent guards mutations only a parent account may perform (task
// approval, allowance config, manual payouts).
func RequireParent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("user_role").(string)
		if role != "parent" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "parent role required",
			})
		}
		return c.Next()
	}
}
