package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"connectaid/internal/config"
	"connectaid/internal/domain"
	"connectaid/internal/middleware"
)

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.DefaultPagination()

	if page := c.QueryInt("page", 1); page > 0 {
		params.Page = page
	}
	if limit := c.QueryInt("limit", params.PageSize); limit > 0 {
		params.PageSize = limit
	}

	params.Validate()
	return params
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.BadRequest("Invalid " + name)
	}
	return id, nil
}

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return nil, middleware.Unauthorized("User not authenticated")
	}
	return user, nil
}

// sessionCookie describes the cookie that carries the access token for
// browser clients.
type sessionCookie struct {
	name   string
	secure bool
	maxAge time.Duration
}

func newSessionCookie(cfg *config.Config) sessionCookie {
	return sessionCookie{
		name:   cfg.AuthCookieName,
		secure: cfg.IsProduction(),
		maxAge: cfg.JWTAccessExpiry,
	}
}

func (s sessionCookie) set(c *fiber.Ctx, token string) {
	if s.name == "" {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     s.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		Secure:   s.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s sessionCookie) clear(c *fiber.Ctx) {
	if s.name == "" {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   s.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
