package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"user-admin-service/internal/token"
)

// RequireActive decodes the bearer token independently of ModuleAccess and
// rejects requests whose isActive claim is false. Run in series after the
// role guard so a deactivated admin is blocked even with a valid role.
func RequireActive(issuer *token.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
			}
			raw, err := token.ExtractBearer(authz)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token expired or invalid"})
			}
			claims, err := issuer.VerifyAccess(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token expired or invalid"})
			}
			if !claims.IsActive {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
			}
			return next(c)
		}
	}
}
