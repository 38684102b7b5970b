package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/http/handlers"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Limiter        *ratelimit.Limiter
	RateLimits     config.RateLimitConfig
}

// RegisterRoutes wires HTTP routes. Rate admission runs before any handler
// so rejected requests never reach credential logic.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	loginLimit := cfg.Limiter.ForClass("login", cfg.RateLimits.Login,
		"too many login attempts, please wait before trying again")
	registerLimit := cfg.Limiter.ForClass("register", cfg.RateLimits.Register,
		"too many registration attempts, please wait before trying again")
	resetLimit := cfg.Limiter.ForClass("password-reset", cfg.RateLimits.PasswordReset,
		"too many password reset attempts, please wait before trying again")
	authLimit := cfg.Limiter.ForClass("auth", cfg.RateLimits.Auth,
		"too many authentication requests, please try again later")
	generalLimit := cfg.Limiter.ForClass("general", cfg.RateLimits.General,
		"too many requests, please try again later")

	authGroup := app.Group("/auth")
	authGroup.Post("/register", registerLimit, cfg.Auth.Register)
	authGroup.Post("/login", loginLimit, cfg.Auth.Login)
	authGroup.Post("/forgot", resetLimit, cfg.Auth.ForgotPassword)
	authGroup.Post("/reset", resetLimit, cfg.Auth.ResetPassword)
	authGroup.Post("/refresh", authLimit, cfg.Auth.Refresh)
	authGroup.Post("/logout", authLimit, cfg.AuthMiddleware.Handle, cfg.Auth.Logout)

	users := app.Group("/users", generalLimit, cfg.AuthMiddleware.Handle)
	users.Get("/me", cfg.Users.GetMe)
	users.Patch("/me", cfg.Users.UpdateMe)
	users.Get("/:id", auth.RequireAdmin(), cfg.Users.GetByID)

	admin := app.Group("/admin", generalLimit, cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Post("/cleanup", cfg.Admin.RunCleanup)
	admin.Get("/metrics", cfg.Admin.Metrics)
}
