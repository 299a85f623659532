// handlers/child_routes.go
package handlers

import (
	"fmt"
	"path/filepath"

	"allowance-system/middleware"
	"allowance-system/services"
	"allowance-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupChildRoutes(app *fiber.App, children *services.ChildService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())
	parentGroup := app.Group("/s", middleware.UserContextMiddleware(), middleware.RequireParent())

	parentGroup.Post("/families", func(c *fiber.Ctx) error {
		var req struct {
			Name string `json:"name" validate:"required,max=100"`
		}
		if err := parseBody(c, &req); err != nil {
			return err
		}
		family, err := children.CreateFamily(req.Name)
		if err != nil {
			return serviceError(c, err, "failed to create family")
		}
		return c.Status(fiber.StatusCreated).JSON(family)
	})

	parentGroup.Post("/families/:familyID/children", func(c *fiber.Ctx) error {
		var req struct {
			Name            string  `json:"name" validate:"required,max=100"`
			AllowanceAmount float64 `json:"allowance_amount" validate:"min=0"`
			AllowanceDay    int     `json:"allowance_day" validate:"min=0,max=6"`
		}
		if err := parseBody(c, &req); err != nil {
			return err
		}
		child, err := children.RegisterChild(c.Params("familyID"), req.Name, req.AllowanceAmount, req.AllowanceDay)
		if err != nil {
			return serviceError(c, err, "failed to register child")
		}
		return c.Status(fiber.StatusCreated).JSON(child)
	})

	securedGroup.Get("/families/:familyID/children", func(c *fiber.Ctx) error {
		list, err := children.ListChildren(c.Params("familyID"))
		if err != nil {
			return serviceError(c, err, "failed to list children")
		}
		return c.JSON(fiber.Map{"children": list})
	})

	securedGroup.Get("/children/:childID", func(c *fiber.Ctx) error {
		profile, err := children.GetProfile(c.Params("childID"))
		if err != nil {
			return serviceError(c, err, "failed to load profile")
		}
		return c.JSON(profile)
	})

	parentGroup.Put("/children/:childID/allowance", func(c *fiber.Ctx) error {
		var req struct {
			Amount float64 `json:"amount" validate:"min=0"`
			Day    int     `json:"day" validate:"min=0,max=6"`
		}
		if err := parseBody(c, &req); err != nil {
			return err
		}
		if err := children.UpdateAllowance(c.Params("childID"), req.Amount, req.Day); err != nil {
			return serviceError(c, err, "failed to update allowance")
		}
		return c.JSON(fiber.Map{"message": "allowance updated"})
	})

	// Avatar image upload: R2 when configured, local uploads dir otherwise
	securedGroup.Post("/children/:childID/avatar", func(c *fiber.Ctx) error {
		childID := c.Params("childID")
		fileHeader, err := c.FormFile("avatar")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file missing"})
		}

		key := fmt.Sprintf("avatars/%s%s", uuid.NewString(), filepath.Ext(fileHeader.Filename))
		var url string
		if utils.R2Enabled() {
			url, err = utils.UploadFileToR2(fileHeader, key)
			if err != nil {
				return serviceError(c, err, "failed to upload avatar")
			}
		} else {
			dest := utils.UploadPath(key)
			if err := utils.SaveFile(fileHeader, dest); err != nil {
				return serviceError(c, err, "failed to save avatar")
			}
			url = "/" + filepath.ToSlash(dest)
		}

		if err := children.SetAvatarURL(childID, url); err != nil {
			return serviceError(c, err, "failed to set avatar")
		}
		return c.JSON(fiber.Map{"avatar_url": url})
	})
}
