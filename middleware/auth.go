package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// APIKeyAuth guards protected routes with a static key check on the
// X-API-Key header. Access is binary: the one configured key unlocks every
// read endpoint, anything else is rejected before the handler runs. The
// comparison is plain string equality, with no hashing or token parsing.
func APIKeyAuth(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := c.Get("X-API-Key")
		if provided == "" || provided != apiKey {
			logrus.WithFields(logrus.Fields{
				"ip":   c.IP(),
				"path": c.Path(),
			}).Warn("Rejected request with invalid or missing API key")

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid or missing API key",
			})
		}
		return c.Next()
	}
}
