package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campusfix/hostel-desk/internal/api/http/handlers"
	"github.com/campusfix/hostel-desk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	AdminTickets   *handlers.AdminTicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	tickets := api.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireRoles())
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/by-user/:id", cfg.Tickets.ListByUser)

	admin := api.Group("/admin/tickets", cfg.AuthMiddleware.Handle, auth.RequireTriage())
	admin.Get("/", cfg.AdminTickets.ListTickets)
	admin.Get("/stats", cfg.AdminTickets.Stats)
	admin.Put("/:id/assign", cfg.AdminTickets.Assign)
	admin.Put("/:id/status", cfg.AdminTickets.UpdateStatus)
}
