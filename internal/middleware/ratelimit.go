package middleware

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"connectaid/internal/service/ratelimit"
)

// RateLimit throttles by client address and route. Limiter outages fail
// open.
func RateLimit(limiter ratelimit.Service, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Route().Path + ":" + GetClientIP(c)

		res, err := limiter.Allow(c.UserContext(), key)
		if err != nil {
			log.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			return c.Next()
		}

		c.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, try again later")
		}
		return c.Next()
	}
}
