package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campoverde/plano-api/internal/config"
	"github.com/campoverde/plano-api/internal/handler"
	"github.com/campoverde/plano-api/internal/middleware"
	"github.com/campoverde/plano-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	PlanHandler     *handler.PlanHandler
	NoteHandler     *handler.NoteHandler
	EvidenceHandler *handler.EvidenceHandler
	EventsHandler   *handler.EventsHandler
	JWTMiddleware   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	plan := api.Group("/orgs/:orgID/plan", jwtMiddleware, middleware.RateLimit("plan", 120, time.Minute))
	view := middleware.RequireOrgCapability(middleware.CapabilityView)
	edit := middleware.RequireOrgCapability(middleware.CapabilityEdit)

	if deps.EventsHandler != nil {
		deps.EventsHandler.Register(plan, view)
	}
	if deps.NoteHandler != nil {
		deps.NoteHandler.Register(plan, view, edit)
	}
	if deps.EvidenceHandler != nil {
		deps.EvidenceHandler.Register(plan, view, edit)
	}
	if deps.PlanHandler != nil {
		deps.PlanHandler.Register(plan, view, edit)
	}
}
