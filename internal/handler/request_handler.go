package handler

import (
	"github.com/gofiber/fiber/v2"

	"connectaid/internal/domain"
	"connectaid/internal/middleware"
	"connectaid/internal/service/request"
)

const (
	actionAccept       = "accept"
	actionUpdateStatus = "update_status"
)

type RequestHandler struct {
	requestService request.Service
}

func NewRequestHandler(requestService request.Service) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var input domain.CreateRequestInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	req, err := h.requestService.Create(c.UserContext(), actor, input, middleware.GetRequestMeta(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *RequestHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	query := request.ListQuery{PaginationParams: getPaginationParams(c)}
	if s := c.Query("status"); s != "" {
		status := domain.RequestStatus(s)
		query.Status = &status
	}
	if t := c.Query("type"); t != "" {
		reqType := domain.RequestType(t)
		query.Type = &reqType
	}

	result, err := h.requestService.List(c.UserContext(), actor, query)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func (h *RequestHandler) Get(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	req, err := h.requestService.Get(c.UserContext(), actor, id)
	if err != nil {
		return err
	}

	return c.JSON(req)
}

type updateRequestBody struct {
	Action string               `json:"action"`
	Status domain.RequestStatus `json:"status"`
	domain.UpdateRequestInput
}

// Update dispatches on action: accept, update_status, or a plain edit when
// action is absent.
func (h *RequestHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var body updateRequestBody
	if err := c.BodyParser(&body); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	ctx := c.UserContext()
	meta := middleware.GetRequestMeta(c)

	var req *domain.ServiceRequest
	switch body.Action {
	case actionAccept:
		req, err = h.requestService.Accept(ctx, actor, id, meta)
	case actionUpdateStatus:
		if body.Status == "" {
			return middleware.BadRequest("status is required")
		}
		req, err = h.requestService.AdvanceStatus(ctx, actor, id, body.Status, meta)
	case "", "edit":
		req, err = h.requestService.Edit(ctx, actor, id, body.UpdateRequestInput, meta)
	default:
		return middleware.BadRequest("Unknown action " + body.Action)
	}
	if err != nil {
		return err
	}

	return c.JSON(req)
}

func (h *RequestHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.requestService.Delete(c.UserContext(), actor, id, middleware.GetRequestMeta(c)); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Request deleted",
	})
}
