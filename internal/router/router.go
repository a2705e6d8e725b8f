package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/courseflow/courseflow-api/internal/config"
	"github.com/courseflow/courseflow-api/internal/handler"
	"github.com/courseflow/courseflow-api/internal/middleware"
	"github.com/courseflow/courseflow-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProgressHandler *handler.ProgressHandler
	JWTMiddleware   fiber.Handler
	SessionTTL      time.Duration
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	sessionTTL := deps.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}

	if deps.ProgressHandler != nil {
		courses := api.Group("/courses",
			jwtMiddleware,
			middleware.AnonymousSession(sessionTTL),
			middleware.RateLimit("progress", 30, time.Second),
		)
		deps.ProgressHandler.Register(courses)
	}
}
