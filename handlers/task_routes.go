// handlers/task_routes.go
package handlers

import (
	"allowance-system/middleware"
	"allowance-system/models"
	"allowance-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTaskRoutes(app *fiber.App, tasks *services.TaskService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())
	parentGroup := app.Group("/s", middleware.UserContextMiddleware(), middleware.RequireParent())

	securedGroup.Get("/children/:childID/tasks", func(c *fiber.Ctx) error {
		status := models.TaskStatus(c.Query("status"))
		list, err := tasks.List(c.Params("childID"), status)
		if err != nil {
			return serviceError(c, err, "failed to list tasks")
		}
		return c.JSON(fiber.Map{"tasks": list})
	})

	parentGroup.Post("/children/:childID/tasks", func(c *fiber.Ctx) error {
		var req struct {
			Title        string  `json:"title" validate:"required,max=100"`
			Description  string  `json:"description" validate:"max=500"`
			RewardAmount float64 `json:"reward_amount" validate:"min=0"`
		}
		if err := parseBody(c, &req); err != nil {
			return err
		}
		task, err := tasks.CreateTask(c.Params("childID"), req.Title, req.Description, req.RewardAmount)
		if err != nil {
			return serviceError(c, err, "failed to create task")
		}
		return c.Status(fiber.StatusCreated).JSON(task)
	})

	securedGroup.Post("/tasks/:taskID/submit", func(c *fiber.Ctx) error {
		task, err := tasks.Submit(c.Params("taskID"))
		if err != nil {
			return serviceError(c, err, "failed to submit task")
		}
		return c.JSON(task)
	})

	parentGroup.Post("/tasks/:taskID/approve", func(c *fiber.Ctx) error {
		approvedBy, _ := c.Locals("user_id").(string)
		task, err := tasks.Approve(c.Params("taskID"), approvedBy)
		if err != nil {
			return serviceError(c, err, "failed to approve task")
		}
		return c.JSON(task)
	})

	parentGroup.Post("/tasks/:taskID/reject", func(c *fiber.Ctx) error {
		rejectedBy, _ := c.Locals("user_id").(string)
		task, err := tasks.Reject(c.Params("taskID"), rejectedBy)
		if err != nil {
			return serviceError(c, err, "failed to reject task")
		}
		return c.JSON(task)
	})
}
