package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/smart-helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/smart-helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	AgentTickets   *handlers.AgentTicketsHandler
	KB             *handlers.KBHandler
	Config         *handlers.ConfigHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/replies", cfg.Tickets.AddReply)
	tickets.Post("/:id/close", cfg.Tickets.CloseTicket)
	tickets.Get("/:id/audit", cfg.Tickets.ListAudit)

	agent := app.Group("/agent/tickets", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	agent.Get("", cfg.AgentTickets.ListQueue)
	agent.Get("/:id", cfg.AgentTickets.GetTicket)
	agent.Post("/:id/replies", cfg.AgentTickets.AddReply)
	agent.Patch("/:id/status", cfg.AgentTickets.UpdateStatus)
	agent.Post("/:id/assign", cfg.AgentTickets.Assign)
	agent.Post("/:id/retriage", cfg.AgentTickets.Retriage)
	agent.Get("/:id/audit", cfg.AgentTickets.ListAudit)

	kb := app.Group("/kb")
	kb.Get("/search", cfg.KB.Search)

	kbStaff := kb.Group("/articles", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	kbStaff.Get("", cfg.KB.List)
	kbStaff.Post("", cfg.KB.Create)
	kbStaff.Get("/:id", cfg.KB.Get)
	kbStaff.Put("/:id", cfg.KB.Update)
	kbStaff.Patch("/:id/status", cfg.KB.SetStatus)
	kbStaff.Delete("/:id", cfg.KB.Delete)

	configGroup := app.Group("/config/agent", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	configGroup.Get("", cfg.Config.Get)
	configGroup.Put("", cfg.Config.Update)
}
