package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"connectaid/internal/domain"
	"connectaid/internal/middleware"
	"connectaid/internal/service/admin"
	"connectaid/internal/service/stats"
)

type AdminHandler struct {
	adminService admin.Service
	statsService stats.Service
}

func NewAdminHandler(adminService admin.Service, statsService stats.Service) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		statsService: statsService,
	}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	filter := domain.UserFilter{Search: c.Query("search")}
	if r := c.Query("role"); r != "" {
		role := domain.Role(r)
		filter.Role = &role
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return middleware.BadRequest("active must be true or false")
		}
		filter.IsActive = &active
	}

	result, err := h.adminService.ListUsers(c.UserContext(), filter, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var input domain.AdminUpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	updated, err := h.adminService.UpdateUser(c.UserContext(), actor, input, middleware.GetRequestMeta(c))
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

func (h *AdminHandler) ListPendingVolunteers(c *fiber.Ctx) error {
	result, err := h.adminService.ListPendingVolunteers(c.UserContext(), getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func (h *AdminHandler) ReviewVolunteer(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var input domain.ReviewVolunteerInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	if err := h.adminService.ReviewVolunteer(c.UserContext(), actor, input, middleware.GetRequestMeta(c)); err != nil {
		return err
	}

	message := "Volunteer approved"
	if input.Action == domain.VolunteerReject {
		message = "Volunteer application rejected"
	}
	return c.JSON(fiber.Map{
		"message": message,
	})
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	result, err := h.statsService.RequestStats(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(result)
}
