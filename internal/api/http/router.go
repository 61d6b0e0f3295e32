package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/garageops/dispatch-service/internal/api/http/handlers"
	"github.com/garageops/dispatch-service/internal/auth"
	"github.com/garageops/dispatch-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Requests       *handlers.RequestsHandler
	Automations    *handlers.AutomationsHandler
	Technicians    *handlers.TechniciansHandler
	Parts          *handlers.PartsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Users.Me)

	requests := app.Group("/requests", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	requests.Post("/", cfg.Requests.Create)
	requests.Get("/", cfg.Requests.List)
	requests.Get("/:id", cfg.Requests.Get)
	requests.Post("/:id/report", auth.RequireRole(domain.RoleTechnician, domain.RoleManager, domain.RoleAdmin), cfg.Requests.SubmitReport)
	requests.Post("/:id/cancel", cfg.Requests.Cancel)
	requests.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Requests.Delete)

	// Quote approval is the customer's call; everything else in the engine
	// is an operations action.
	automations := app.Group("/automations", cfg.AuthMiddleware.Handle)
	automations.Post("/requests/:id/approve-quote", auth.RequireAnyRole(), cfg.Automations.ApproveQuote)

	ops := automations.Group("", auth.RequireRole(domain.RoleManager, domain.RoleAdmin))
	ops.Post("/requests/:id/triage", cfg.Automations.Triage)
	ops.Post("/requests/:id/assign", cfg.Automations.Assign)
	ops.Post("/requests/:id/schedule", cfg.Automations.Schedule)
	ops.Post("/requests/:id/quote", cfg.Automations.GenerateQuote)
	ops.Post("/requests/:id/close", cfg.Automations.Close)

	technicians := app.Group("/technicians", cfg.AuthMiddleware.Handle)
	technicians.Get("/me", auth.RequireRole(domain.RoleTechnician), cfg.Technicians.Me)
	technicians.Get("/", auth.RequireRole(domain.RoleManager, domain.RoleAdmin), cfg.Technicians.List)
	technicians.Get("/:id", auth.RequireRole(domain.RoleManager, domain.RoleAdmin), cfg.Technicians.Get)
	technicians.Post("/", auth.RequireRole(domain.RoleManager, domain.RoleAdmin), cfg.Technicians.Create)

	parts := app.Group("/parts", cfg.AuthMiddleware.Handle)
	parts.Get("/", auth.RequireAnyRole(), cfg.Parts.List)
	parts.Get("/:id", auth.RequireAnyRole(), cfg.Parts.Get)
	parts.Post("/", auth.RequireRole(domain.RoleManager, domain.RoleAdmin), cfg.Parts.Create)
	parts.Put("/:id", auth.RequireRole(domain.RoleManager, domain.RoleAdmin), cfg.Parts.Update)
	parts.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Parts.Delete)
}
