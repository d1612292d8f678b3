package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/Skyebold/SponsorBlockServer/internal/handler"
	"github.com/Skyebold/SponsorBlockServer/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Segment *handler.SegmentHandler
	Lock    *handler.LockHandler
	User    *handler.UserHandler
	Health  *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestID())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewMetrics())
	app.Use(middleware.NewCORS(corsOrigins))

	fetchLimiter := middleware.NewFetchRateLimiter()
	submitLimiter := middleware.NewSubmitRateLimiter()
	lockLimiter := middleware.NewLockRateLimiter()

	// Health checks (before API group)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)

	// Prometheus metrics
	app.Get("/metrics", handler.MetricsHandler())

	// API routes
	api := app.Group("/api")

	// Description segment routes. The prefixed lookup must be registered
	// after the plain one so /api/descriptionSegments?videoID=... still
	// matches the un-parameterized route.
	api.Get("/descriptionSegments", h.Segment.Get, fetchLimiter.Handler())
	api.Get("/descriptionSegments/:hashPrefix", h.Segment.GetByHashPrefix, fetchLimiter.Handler())
	api.Post("/descriptionSegments", h.Segment.Post, submitLimiter.Handler())

	// Lock category routes
	api.Get("/lockCategories", h.Lock.Get, fetchLimiter.Handler())
	api.Delete("/lockCategories", h.Lock.Delete, lockLimiter.Handler())

	// User routes
	api.Get("/users/:userID", h.User.Get, fetchLimiter.Handler())
}
