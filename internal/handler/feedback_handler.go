package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"connectaid/internal/domain"
	"connectaid/internal/middleware"
	"connectaid/internal/service/feedback"
)

type FeedbackHandler struct {
	feedbackService feedback.Service
}

func NewFeedbackHandler(feedbackService feedback.Service) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

func (h *FeedbackHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var input domain.CreateFeedbackInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	fb, err := h.feedbackService.Create(c.UserContext(), actor, input, middleware.GetRequestMeta(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fb)
}

// List serves ?requestId= (all feedback on a request the caller can view)
// and ?userId= (public feedback received by a user, with their rating).
func (h *FeedbackHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	if raw := c.Query("requestId"); raw != "" {
		requestID, err := uuid.Parse(raw)
		if err != nil {
			return middleware.BadRequest("Invalid requestId")
		}
		items, err := h.feedbackService.ListByRequest(c.UserContext(), actor, requestID)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": items})
	}

	if raw := c.Query("userId"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return middleware.BadRequest("Invalid userId")
		}
		result, err := h.feedbackService.ListForUser(c.UserContext(), userID, getPaginationParams(c))
		if err != nil {
			return err
		}
		return c.JSON(result)
	}

	return middleware.BadRequest("requestId or userId is required")
}

func (h *FeedbackHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.feedbackService.Delete(c.UserContext(), actor, id, middleware.GetRequestMeta(c)); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Feedback deleted",
	})
}
