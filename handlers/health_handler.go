package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/fenilmodi00/sebi-ipo-api/config"
	"github.com/fenilmodi00/sebi-ipo-api/database"
)

type HealthHandler struct {
	Store *database.Store
}

func NewHealthHandler(store *database.Store) *HealthHandler {
	return &HealthHandler{Store: store}
}

// GetWelcome is the public landing route.
func (h *HealthHandler) GetWelcome(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":        "Welcome to " + config.AppName,
		"version":        config.AppVersion,
		"status":         "active",
		"authentication": "Required - Use X-API-Key header",
		"note":           "All /ipos endpoints require a valid API key",
	})
}

// GetHealth probes database connectivity. The response is always 200: an
// unreachable database is reported in the body rather than as an error
// status, so uptime checks can tell "API down" from "API up, store down".
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	if err := h.Store.Ping(c.Context()); err != nil {
		logrus.WithField("error", err).Warn("Health check could not reach database")
		return c.JSON(fiber.Map{
			"status":   "unhealthy",
			"database": "disconnected",
		})
	}
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"database": "connected",
	})
}
