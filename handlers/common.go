package handlers

import (
	"errors"

	"allowance-system/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var validate = validator.New()

// parseBody decodes and validates a request DTO in one step.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON",
			"cause": err.Error(),
		})
	}
	if err := validate.Struct(dst); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "validation failed",
			"cause": err.Error(),
		})
	}
	return nil
}

// serviceError maps service sentinels onto HTTP statuses. Unknown errors are
// 500s with the cause attached.
func serviceError(c *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, services.ErrInsufficientPoints):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "insufficient points"})
	case errors.Is(err, services.ErrInsufficientFunds):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "insufficient funds"})
	case errors.Is(err, services.ErrAlreadyUnlocked):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "reward already unlocked"})
	case errors.Is(err, services.ErrRewardNotUnlocked):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "reward not unlocked"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": action,
		"cause": err.Error(),
	})
}
