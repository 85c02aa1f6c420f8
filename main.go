package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fenilmodi00/sebi-ipo-api/config"
	"github.com/fenilmodi00/sebi-ipo-api/database"
	"github.com/fenilmodi00/sebi-ipo-api/handlers"
	"github.com/fenilmodi00/sebi-ipo-api/middleware"
	"github.com/fenilmodi00/sebi-ipo-api/services"
	"github.com/fenilmodi00/sebi-ipo-api/shared"
)

func main() {
	// Load config
	cfg := config.LoadConfig()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("Invalid LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	// Open the connection pool. The database being down is not fatal: the
	// server still serves /health and reports per-request store failures.
	store, err := database.Connect(cfg.DSN())
	if err != nil {
		logrus.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	counterStore := newCounterStore(cfg)
	defer counterStore.Close()

	metrics := shared.NewRequestMetrics()

	// Initialize services and handlers
	filingService := services.NewFilingService(store)
	filingHandler := handlers.NewFilingHandler(filingService)
	healthHandler := handlers.NewHealthHandler(store)

	// Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      config.AppName,
		ErrorHandler: errorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
	}))
	app.Use(cors.New())
	app.Use(middleware.Metrics(metrics))

	// Public routes
	app.Get("/", healthHandler.GetWelcome)
	app.Get("/health", healthHandler.GetHealth)

	// Protected routes. The limiter runs before the key check so abusive
	// clients get 429 even with a bad key. /ipos/latest must be registered
	// before /ipos/:id or the parameter route would capture it.
	app.Get("/ipos",
		middleware.RateLimit(counterStore, middleware.RateLimitRequests, middleware.RateLimitWindow, "ipos:list"),
		middleware.APIKeyAuth(cfg.APIKey),
		filingHandler.GetFilings)
	app.Get("/ipos/latest",
		middleware.RateLimit(counterStore, middleware.RateLimitRequests, middleware.RateLimitWindow, "ipos:latest"),
		middleware.APIKeyAuth(cfg.APIKey),
		filingHandler.GetLatestFilings)
	app.Get("/ipos/:id",
		middleware.RateLimit(counterStore, middleware.RateLimitRequests, middleware.RateLimitWindow, "ipos:detail"),
		middleware.APIKeyAuth(cfg.APIKey),
		filingHandler.GetFilingByID)

	// Shut down on SIGINT/SIGTERM, draining in-flight requests first
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logrus.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			logrus.Errorf("Server shutdown failed: %v", err)
		}
	}()

	logrus.WithFields(logrus.Fields{
		"app":     config.AppName,
		"version": config.AppVersion,
		"port":    cfg.ServerPort,
	}).Info("Server starting")

	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logrus.Fatalf("Server failed to start: %v", err)
	}

	metrics.LogSummary()
}

// newCounterStore picks the Redis-backed rate limit store when REDIS_ADDR
// is set and reachable, otherwise the in-memory one. Falling back keeps the
// API serving with per-instance limits if Redis is down at boot.
func newCounterStore(cfg *config.Config) shared.CounterStore {
	if cfg.RedisAddr == "" {
		return shared.NewMemoryCounterStore()
	}

	store, err := shared.NewRedisCounterStore(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logrus.WithField("error", err).Error("Redis unavailable, falling back to in-memory rate limit counters")
		return shared.NewMemoryCounterStore()
	}

	logrus.WithField("addr", cfg.RedisAddr).Info("Using Redis rate limit counters")
	return store
}

// errorHandler renders errors that escape the handlers (panics surfaced by
// the recover middleware, unmatched routes) in the same JSON shape the
// handlers use.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	if code >= fiber.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"path":  c.Path(),
			"error": err,
		}).Error("Unhandled request error")
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
