// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"user-admin-service/internal/config"
	"user-admin-service/internal/handler"
	"user-admin-service/internal/middleware"
	"user-admin-service/internal/token"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Cfg     config.Config
	Issuer  *token.Issuer
	Auth    *handler.AuthHandler
	Users   *handler.UserHandler
	Roles   *handler.RoleHandler
	Links   *handler.LinkHandler
	Limiter echo.MiddlewareFunc // rate limiter for the credential endpoints
}

// Register wires all routes. API endpoints live under the configured
// prefix; the health check and the emailed-link endpoints stay at the
// root, since the links are baked into emails before any prefix applies.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	e.GET("/confirm-email", d.Links.ConfirmEmail)
	e.GET("/reset-password", d.Links.ResetPassword)

	api := e.Group("/" + d.Cfg.APIPrefix)

	// Credential endpoints: no auth middleware (they establish identity),
	// but rate limited to slow down brute force.
	authGroup := api.Group("/auth")
	if d.Limiter != nil {
		authGroup.Use(d.Limiter)
	}
	authGroup.POST("/login", d.Auth.Login)
	authGroup.POST("/refresh", d.Auth.Refresh)
	authGroup.POST("/register", d.Auth.Register)
	authGroup.POST("/get-reset-password-link", d.Auth.GetResetPasswordLink)
	authGroup.PATCH("/change-password", d.Auth.ChangePassword)
	authGroup.PATCH("/update", d.Auth.Update)
	authGroup.DELETE("/delete-account", d.Auth.DeleteAccount)

	// The users module: role-gated per configuration, then the active
	// check so a deactivated account is blocked even with the right role.
	users := api.Group("/users",
		middleware.ModuleAccess(d.Cfg.Access, "users", d.Issuer),
		middleware.RequireActive(d.Issuer))
	users.POST("", d.Users.Create)
	users.GET("", d.Users.Find)
	users.GET("/:id", d.Users.GetOne)
	users.PATCH("/:id", d.Users.Update)
	users.DELETE("/:id", d.Users.Delete)

	roles := api.Group("/roles",
		middleware.ModuleAccess(d.Cfg.Access, "roles", d.Issuer),
		middleware.RequireActive(d.Issuer))
	roles.POST("", d.Roles.Create)
	roles.GET("", d.Roles.List)
	roles.GET("/:code", d.Roles.GetByCode)
	roles.PATCH("/:code", d.Roles.Update)
	roles.DELETE("/:code", d.Roles.Delete)
}
