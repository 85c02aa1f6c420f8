package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/fenilmodi00/sebi-ipo-api/shared"
)

// The limit is part of the API contract, not deployment configuration.
const (
	RateLimitRequests = 100
	RateLimitWindow   = 1 * time.Minute
)

// RateLimit limits each client IP to limit requests per rolling window on
// one endpoint. scope names the endpoint so counters never bleed across
// routes; the store is injected so limiter state has an explicit owner and
// can live in Redis when instances share a limit.
//
// Counter failures fail open: a dead Redis slows nobody down, it only
// disables limiting until it returns.
func RateLimit(store shared.CounterStore, limit int, window time.Duration, scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := scope + ":" + c.IP()

		count, err := store.Increment(c.Context(), key, window)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"scope": scope,
				"ip":    c.IP(),
				"error": err,
			}).Warn("Rate limit counter unavailable, allowing request")
			return c.Next()
		}

		if count > limit {
			logrus.WithFields(logrus.Fields{
				"scope": scope,
				"ip":    c.IP(),
				"count": count,
			}).Warn("Rate limit exceeded")

			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   fmt.Sprintf("Rate limit exceeded: %d per %s", limit, windowText(window)),
			})
		}

		return c.Next()
	}
}

func windowText(window time.Duration) string {
	if window == time.Minute {
		return "1 minute"
	}
	return window.String()
}
