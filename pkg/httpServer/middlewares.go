package httpServer

import (
	"github.com/gofiber/fiber/v2"
)

// requireAdmin validates the Basic credentials on every call; there is
// no session state to carry between requests.
func (h *handler) requireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return errorHandler(c, fiber.NewError(fiber.StatusUnauthorized, "authentication required"))
		}

		username, password, ok := parseBasicAuth(authHeader)
		if !ok {
			return errorHandler(c, fiber.NewError(fiber.StatusUnauthorized, "authentication required"))
		}

		if !h.admin.Authenticate(username, password) {
			return errorHandler(c, fiber.NewError(fiber.StatusUnauthorized, "invalid credentials"))
		}

		return c.Next()
	}
}

func (h *handler) loggerMiddleware(c *fiber.Ctx) error {
	headers := c.GetReqHeaders()
	delete(headers, "Authorization")

	if _, ok := headers["Cookie"]; ok {
		headers["Cookie"] = []string{"REDACTED"}
	}

	res := c.Next()

	h.logger.Debug(
		"request",
		"status_code", c.Response().StatusCode(),
		"method", c.Method(),
		"url", c.OriginalURL(),
		"headers", headers,
		"body_length", len(c.Body()),
	)

	return res
}

func (h *handler) securityHeadersMiddleware(c *fiber.Ctx) error {
	// X-Frame-Options to prevent clickjacking
	c.Set("X-Frame-Options", "DENY")

	// X-Content-Type-Options to prevent MIME-sniffing
	c.Set("X-Content-Type-Options", "nosniff")

	// Referrer-Policy to control referrer sending
	c.Set("Referrer-Policy", "no-referrer")

	return c.Next()
}
