package handler

import (
	"github.com/gofiber/fiber/v2"

	"connectaid/internal/domain"
	"connectaid/internal/middleware"
	"connectaid/internal/service/user"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	current, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(current)
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var input domain.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	updated, err := h.userService.UpdateProfile(c.UserContext(), middleware.GetCurrentUserID(c), input)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}
