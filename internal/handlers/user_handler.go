package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tastebook/backend/internal/dto"
	"github.com/tastebook/backend/internal/identity"
	"github.com/tastebook/backend/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Show(c *fiber.Ctx) error {
	targetID, err := c.ParamsInt("id")
	if err != nil || targetID < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}

	viewerID := identity.ViewerID(c)

	profile, err := h.userService.Profile(viewerID, uint(targetID))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch profile",
		})
	}

	return c.JSON(profile)
}
