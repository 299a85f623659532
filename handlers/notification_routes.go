// handlers/notification_routes.go
package handlers

import (
	"strconv"

	"allowance-system/middleware"
	"allowance-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupNotificationRoutes(app *fiber.App, notifications *services.NotificationService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Get("/children/:childID/notifications", func(c *fiber.Ctx) error {
		unreadOnly := c.Query("unread", "false") == "true"
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		list, err := notifications.List(c.Params("childID"), unreadOnly, limit)
		if err != nil {
			return serviceError(c, err, "failed to list notifications")
		}
		return c.JSON(fiber.Map{"notifications": list})
	})

	// Poll target for the client's unread badge counter
	securedGroup.Get("/children/:childID/notifications/count", func(c *fiber.Ctx) error {
		count, err := notifications.UnreadCount(c.Params("childID"))
		if err != nil {
			return serviceError(c, err, "failed to count notifications")
		}
		return c.JSON(fiber.Map{"unread_count": count})
	})

	securedGroup.Post("/children/:childID/notifications/read", func(c *fiber.Ctx) error {
		var req struct {
			IDs []string `json:"ids"`
		}
		if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		marked, err := notifications.MarkRead(c.Params("childID"), req.IDs)
		if err != nil {
			return serviceError(c, err, "failed to mark notifications read")
		}
		return c.JSON(fiber.Map{"message": "OK", "marked_count": marked})
	})
}
