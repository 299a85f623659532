// handlers/reward_routes.go
package handlers

import (
	"allowance-system/middleware"
	"allowance-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupRewardRoutes(app *fiber.App, rewards *services.RewardService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	// Reward catalog annotated with unlock/equip state and affordability
	securedGroup.Get("/children/:childID/rewards", func(c *fiber.Ctx) error {
		listings, err := rewards.CatalogFor(c.Params("childID"))
		if err != nil {
			return serviceError(c, err, "failed to list rewards")
		}
		return c.JSON(fiber.Map{"rewards": listings})
	})

	securedGroup.Post("/children/:childID/rewards/:rewardID/unlock", func(c *fiber.Ctx) error {
		rewardID := c.Params("rewardID")
		if _, err := uuid.Parse(rewardID); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid reward ID"})
		}
		unlock, err := rewards.Unlock(c.Params("childID"), rewardID)
		if err != nil {
			return serviceError(c, err, "failed to unlock reward")
		}
		return c.Status(fiber.StatusCreated).JSON(unlock)
	})

	securedGroup.Post("/children/:childID/rewards/:rewardID/equip", func(c *fiber.Ctx) error {
		rewardID := c.Params("rewardID")
		if _, err := uuid.Parse(rewardID); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid reward ID"})
		}
		if err := rewards.Equip(c.Params("childID"), rewardID); err != nil {
			return serviceError(c, err, "failed to equip reward")
		}
		return c.JSON(fiber.Map{"message": "equipped", "reward_id": rewardID})
	})

	securedGroup.Post("/children/:childID/rewards/:rewardID/unequip", func(c *fiber.Ctx) error {
		rewardID := c.Params("rewardID")
		if _, err := uuid.Parse(rewardID); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid reward ID"})
		}
		if err := rewards.Unequip(c.Params("childID"), rewardID); err != nil {
			return serviceError(c, err, "failed to unequip reward")
		}
		return c.JSON(fiber.Map{"message": "unequipped", "reward_id": rewardID})
	})
}
