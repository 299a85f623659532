// handlers/achievement_routes.go
package handlers

import (
	"allowance-system/middleware"
	"allowance-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAchievementRoutes(app *fiber.App, engine *services.AchievementService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	// Earned badges for a child, newest first, with isNew flags
	securedGroup.Get("/children/:childID/badges", func(c *fiber.Ctx) error {
		earned, err := engine.EarnedBadges(c.Params("childID"))
		if err != nil {
			return serviceError(c, err, "failed to list earned badges")
		}
		return c.JSON(fiber.Map{"badges": earned, "count": len(earned)})
	})

	// Partial progress toward unearned badges
	securedGroup.Get("/children/:childID/badges/progress", func(c *fiber.Ctx) error {
		inProgress, err := engine.BadgesInProgress(c.Params("childID"))
		if err != nil {
			return serviceError(c, err, "failed to list badge progress")
		}
		return c.JSON(fiber.Map{"badges": inProgress, "count": len(inProgress)})
	})

	// Full catalog with secret badges hidden until earned
	securedGroup.Get("/children/:childID/badges/catalog", func(c *fiber.Ctx) error {
		catalog, err := engine.VisibleCatalog(c.Params("childID"))
		if err != nil {
			return serviceError(c, err, "failed to list badge catalog")
		}
		return c.JSON(fiber.Map{"badges": catalog})
	})

	// Acknowledge-seen: clears isNew on the listed awards (or all when empty)
	securedGroup.Post("/children/:childID/badges/ack", func(c *fiber.Ctx) error {
		var req struct {
			BadgeIDs []string `json:"badge_ids"`
		}
		if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		cleared, err := engine.AcknowledgeSeen(c.Params("childID"), req.BadgeIDs)
		if err != nil {
			return serviceError(c, err, "failed to acknowledge badges")
		}
		return c.JSON(fiber.Map{"message": "OK", "cleared": cleared})
	})
}
