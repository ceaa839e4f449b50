package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/account-security/internal/api/http/handlers"
	"github.com/spec-kit/account-security/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Security       *handlers.SecurityHandler
	AuthMiddleware *auth.AuthMiddleware
	Gatherer       prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)
	authGroup.Post("/password/forgot", cfg.Users.ForgotPassword)
	authGroup.Post("/password/reset", cfg.Users.ResetPassword)

	protected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/users/logout", cfg.Users.Logout)
	protected.Put("/users/email", cfg.Users.ChangeEmail)
	protected.Put("/users/password", cfg.Users.ChangePassword)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/:id", auth.RequireSelf("id"), cfg.Users.Get)
	users.Patch("/:id/status", auth.RequireSelf("id"), cfg.Users.ChangeStatus)

	security := app.Group("/security", cfg.AuthMiddleware.Handle)
	security.Post("/codes", cfg.Security.Generate)
	security.Post("/codes/redeem", cfg.Security.Redeem)
	security.Post("/codes/invalidate", cfg.Security.Invalidate)
	security.Get("/challenges", cfg.Security.Challenges)
}
