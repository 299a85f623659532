// handlers/transaction_routes.go
package handlers

import (
	"strconv"

	"allowance-system/middleware"
	"allowance-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTransactionRoutes(app *fiber.App, transactions *services.TransactionService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())
	parentGroup := app.Group("/s", middleware.UserContextMiddleware(), middleware.RequireParent())

	securedGroup.Get("/children/:childID/transactions", func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		size, _ := strconv.Atoi(c.Query("size", "20"))
		txns, total, err := transactions.List(c.Params("childID"), page, size)
		if err != nil {
			return serviceError(c, err, "failed to list transactions")
		}
		return c.JSON(fiber.Map{
			"transactions": txns,
			"page":         page,
			"size":         size,
			"total_items":  total,
		})
	})

	parentGroup.Post("/children/:childID/deposits", func(c *fiber.Ctx) error {
		var req struct {
			Amount      float64 `json:"amount" validate:"required,gt=0"`
			Description string  `json:"description" validate:"max=255"`
			ToSavings   bool    `json:"to_savings"`
		}
		if err := parseBody(c, &req); err != nil {
			return err
		}
		txn, err := transactions.RecordDeposit(c.Params("childID"), req.Amount, req.Description, req.ToSavings)
		if err != nil {
			return serviceError(c, err, "failed to record deposit")
		}
		return c.Status(fiber.StatusCreated).JSON(txn)
	})

	securedGroup.Post("/children/:childID/withdrawals", func(c *fiber.Ctx) error {
		var req struct {
			Amount      float64 `json:"amount" validate:"required,gt=0"`
			Description string  `json:"description" validate:"max=255"`
			FromSavings bool    `json:"from_savings"`
		}
		if err := parseBody(c, &req); err != nil {
			return err
		}
		txn, err := transactions.RecordWithdrawal(c.Params("childID"), req.Amount, req.Description, req.FromSavings)
		if err != nil {
			return serviceError(c, err, "failed to record withdrawal")
		}
		return c.Status(fiber.StatusCreated).JSON(txn)
	})

	securedGroup.Post("/children/:childID/transfers", func(c *fiber.Ctx) error {
		var req struct {
			ToChildID   string  `json:"to_child_id" validate:"required,uuid"`
			Amount      float64 `json:"amount" validate:"required,gt=0"`
			Description string  `json:"description" validate:"max=255"`
		}
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if err := transactions.Transfer(c.Params("childID"), req.ToChildID, req.Amount, req.Description); err != nil {
			return serviceError(c, err, "failed to transfer")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "transfer complete"})
	})

	// Manual payout for when payday can't wait for the scheduler
	parentGroup.Post("/children/:childID/allowance/pay", func(c *fiber.Ctx) error {
		txn, err := transactions.PayAllowance(c.Params("childID"))
		if err != nil {
			return serviceError(c, err, "failed to pay allowance")
		}
		return c.Status(fiber.StatusCreated).JSON(txn)
	})
}
