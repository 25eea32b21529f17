package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/deskflow/helpdesk-api/internal/api/http/handlers"
	"github.com/deskflow/helpdesk-api/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Books          *handlers.BooksHandler
	AuthMiddleware *auth.AuthMiddleware
	// AuthLimiter throttles signup and signin; nil disables throttling.
	AuthLimiter *ClientRateLimiter
	// Gatherer backs /metrics; nil skips the endpoint.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth")
	if cfg.AuthLimiter != nil {
		logger := cfg.Logger
		if logger == nil {
			logger = zap.NewNop()
		}
		authGroup.Use(cfg.AuthLimiter.Middleware(logger))
	}
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/signin", cfg.Auth.Signin)

	protected := cfg.AuthMiddleware.Handle
	app.Get("/me", protected, cfg.Auth.Me)

	tickets := app.Group("/tickets", protected)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Post("/cancel-in-progress", auth.RequireAdmin(), cfg.Tickets.CancelInProgress)
	tickets.Post("/:id/take", cfg.Tickets.TakeTicket)
	tickets.Post("/:id/complete", cfg.Tickets.CompleteTicket)
	tickets.Post("/:id/cancel", cfg.Tickets.CancelTicket)

	books := app.Group("/books")
	books.Get("/", cfg.Books.ListBooks)
	books.Get("/:id", cfg.Books.GetBook)
	books.Post("/", protected, cfg.Books.CreateBook)
	books.Post("/delete", protected, cfg.Books.DeleteBooks)
	books.Patch("/:id", protected, cfg.Books.UpdateBook)
	books.Delete("/:id", protected, cfg.Books.DeleteBook)
}
