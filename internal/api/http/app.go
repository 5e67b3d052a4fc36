package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/campusfix/hostel-desk/internal/api/http/handlers"
	"github.com/campusfix/hostel-desk/internal/auth"
	"github.com/campusfix/hostel-desk/internal/config"
	"github.com/campusfix/hostel-desk/internal/desk"
	"github.com/campusfix/hostel-desk/internal/events"
	"github.com/campusfix/hostel-desk/internal/observability"
	"github.com/campusfix/hostel-desk/internal/repository"
)

// AppDependencies bundles what the reference backend needs.
type AppDependencies struct {
	Config     config.Config
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Users      repository.UserRepository
	Tickets    repository.TicketRepository
	Dispatcher events.Dispatcher
	// Health lists readiness dependencies by name. Nil entries report as disabled.
	Health map[string]handlers.Pinger
}

// NewApp assembles the fiber application with middlewares and routes.
func NewApp(deps AppDependencies) *fiber.App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := deps.Config

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := desk.NewAuthService(desk.AuthDependencies{
		Users:      deps.Users,
		Tokens:     tokens,
		BcryptCost: cfg.Auth.BcryptCost,
		AdminKey:   cfg.Auth.AdminKey,
		Logger:     logger,
	})
	ticketService := desk.NewTicketService(desk.TicketDependencies{
		Tickets:    deps.Tickets,
		Users:      deps.Users,
		Dispatcher: deps.Dispatcher,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
	})
	RegisterMiddlewares(app, logger, deps.Metrics, cfg.App.RequestTimeout())
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps.Health),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AdminTickets:   handlers.NewAdminTicketsHandler(ticketService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), deps.Users),
	})
	return app
}
