package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fenilmodi00/sebi-ipo-api/shared"
)

// Metrics records the outcome and latency of every request against its
// matched route pattern. Reads c.Route() after Next so parameterized paths
// collapse into one route entry.
func Metrics(metrics *shared.RequestMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Method() + " " + c.Route().Path
		metrics.RecordRequest(route, status < fiber.StatusInternalServerError, time.Since(start))

		return err
	}
}
