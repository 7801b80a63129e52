package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fieldserve/helpdesk-service/internal/api/http/handlers"
	"github.com/fieldserve/helpdesk-service/internal/auth"
	"github.com/fieldserve/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	PurchaseOrders *handlers.PurchaseOrdersHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle, auth.RequireRole())

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/purchase-orders", cfg.PurchaseOrders.Create)
	tickets.Get("/:id/purchase-orders", cfg.PurchaseOrders.ListByTicket)

	orders := api.Group("/purchase-orders")
	orders.Get("/:id", cfg.PurchaseOrders.Get)
	orders.Post("/:id/items", cfg.PurchaseOrders.AddItem)
	orders.Patch("/:id/status", cfg.PurchaseOrders.UpdateStatus)
	orders.Post("/:id/approve", auth.RequireRole(domain.RoleAdmin), cfg.PurchaseOrders.Approve)
	orders.Post("/:id/reject", auth.RequireRole(domain.RoleAdmin), cfg.PurchaseOrders.Reject)

	notifications := api.Group("/notifications")
	notifications.Get("", cfg.Notifications.List)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)
}
