package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/warden/internal/api/http/handlers"
	"github.com/spec-kit/warden/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Identity      *handlers.IdentityHandler
	Accounts      *handlers.AccountsHandler
	Authenticator *auth.RequestAuthenticator
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	identity := app.Group("/identity")
	identity.Post("/connect/token", cfg.Identity.Token)
	identity.Post("/accounts/prelogin", cfg.Accounts.Prelogin)
	identity.Post("/accounts/register", cfg.Accounts.Register)
	identity.Post("/accounts/register/finish", cfg.Accounts.Register)

	api := app.Group("/api")
	api.Get("/accounts/profile", cfg.Authenticator.Handle, cfg.Accounts.Profile)
}
