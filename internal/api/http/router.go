package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/booking-portal/internal/api/http/handlers"
	"github.com/spec-kit/booking-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Catalog  *handlers.CatalogHandler
	Consumer *handlers.ConsumerHandler
	Pro      *handlers.ProHandler
	Admin    *handlers.AdminHandler
	Guard    *auth.Guard
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/hotels", cfg.Catalog.Hotels)
	app.Get("/hotels/:id", cfg.Catalog.Hotel)
	app.Get("/restaurants", cfg.Catalog.Restaurants)
	app.Get("/restaurants/:id", cfg.Catalog.Restaurant)
	app.Get("/cars", cfg.Catalog.Cars)
	app.Get("/cars/:id", cfg.Catalog.Car)

	app.Get("/login", cfg.Consumer.LoginPage)
	app.Post("/login", cfg.Consumer.Login)
	app.Post("/register", cfg.Consumer.Register)
	app.Post("/logout", cfg.Consumer.Logout)

	consumer := cfg.Guard.RequireConsumer()
	app.Get("/account", consumer, cfg.Consumer.Account)
	app.Get("/reservations", consumer, cfg.Consumer.Reservations)
	app.Post("/reservations", consumer, cfg.Consumer.CreateReservation)
	app.Post("/reservations/:id/cancel", consumer, cfg.Consumer.CancelReservation)

	pro := app.Group("/pro")
	pro.Get("/login", cfg.Pro.LoginPage)
	pro.Post("/login", cfg.Pro.Login)
	pro.Post("/register", cfg.Pro.Register)
	pro.Post("/logout", cfg.Pro.Logout)

	owner := cfg.Guard.RequireBusiness()
	pro.Get("/dashboard", owner, cfg.Pro.Dashboard)
	pro.Get("/business", owner, cfg.Pro.Business)
	pro.Get("/reservations", owner, cfg.Pro.Reservations)
	pro.Post("/reservations/:id/status", owner, cfg.Pro.UpdateReservationStatus)

	admin := app.Group("/admin")
	admin.Get("/login", cfg.Admin.LoginPage)
	admin.Post("/login", cfg.Admin.Login)
	admin.Post("/logout", cfg.Admin.Logout)

	console := cfg.Guard.RequireAdmin()
	admin.Get("/dashboard", console, cfg.Admin.Dashboard)
	admin.Get("/admins", console, cfg.Admin.Admins)
	admin.Post("/admins", console, cfg.Admin.CreateAdmin)
	admin.Delete("/admins/:id", console, cfg.Admin.DeleteAdmin)
	admin.Get("/settings", console, cfg.Admin.Settings)
	admin.Put("/settings", console, cfg.Admin.UpdateSettings)
	admin.Get("/wallets", console, cfg.Admin.Wallets)
	admin.Get("/withdrawals", console, cfg.Admin.Withdrawals)
	admin.Post("/withdrawals/:id/complete", console, cfg.Admin.CompleteWithdrawal)
}
