package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"connectaid/internal/domain"
)

const (
	ClientIPKey  = "client_ip"
	UserAgentKey = "user_agent"
)

// RequestInfo records the real client address (honouring Cloudflare and
// proxy headers) and the user agent for audit entries.
func RequestInfo() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(ClientIPKey, clientIP(c))
		c.Locals(UserAgentKey, c.Get(fiber.HeaderUserAgent))
		return c.Next()
	}
}

func clientIP(c *fiber.Ctx) string {
	if ip := strings.TrimSpace(c.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if fwd := c.Get(fiber.HeaderXForwardedFor); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(c.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return c.IP()
}

func GetClientIP(c *fiber.Ctx) string {
	if ip, ok := c.Locals(ClientIPKey).(string); ok && ip != "" {
		return ip
	}
	return c.IP()
}

func GetRequestMeta(c *fiber.Ctx) *domain.RequestMeta {
	ua, _ := c.Locals(UserAgentKey).(string)
	if ua == "" {
		ua = c.Get(fiber.HeaderUserAgent)
	}
	return &domain.RequestMeta{
		IPAddress: GetClientIP(c),
		UserAgent: ua,
	}
}
