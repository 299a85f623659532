// handlers/goal_routes.go
package handlers

import (
	"allowance-system/middleware"
	"allowance-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGoalRoutes(app *fiber.App, goals *services.GoalService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Get("/children/:childID/goals", func(c *fiber.Ctx) error {
		includeCompleted := c.Query("completed", "false") == "true"
		list, err := goals.List(c.Params("childID"), includeCompleted)
		if err != nil {
			return serviceError(c, err, "failed to list goals")
		}
		return c.JSON(fiber.Map{"goals": list})
	})

	securedGroup.Post("/children/:childID/goals", func(c *fiber.Ctx) error {
		var req struct {
			Name         string  `json:"name" validate:"required,max=100"`
			TargetAmount float64 `json:"target_amount" validate:"required,gt=0"`
			ImageURL     string  `json:"image_url" validate:"omitempty,url"`
		}
		if err := parseBody(c, &req); err != nil {
			return err
		}
		goal, err := goals.CreateGoal(c.Params("childID"), req.Name, req.TargetAmount, req.ImageURL)
		if err != nil {
			return serviceError(c, err, "failed to create goal")
		}
		return c.Status(fiber.StatusCreated).JSON(goal)
	})

	securedGroup.Post("/children/:childID/goals/:goalID/deposit", func(c *fiber.Ctx) error {
		var req struct {
			Amount float64 `json:"amount" validate:"required,gt=0"`
		}
		if err := parseBody(c, &req); err != nil {
			return err
		}
		goal, err := goals.Deposit(c.Params("childID"), c.Params("goalID"), req.Amount)
		if err != nil {
			return serviceError(c, err, "failed to deposit toward goal")
		}
		return c.JSON(goal)
	})
}
