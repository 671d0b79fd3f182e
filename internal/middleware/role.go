package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"user-admin-service/internal/config"
	"user-admin-service/internal/token"
)

// Context keys populated by the guards for downstream handlers.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// ModuleAccess returns the role-based guard for one module. The allowed
// role set is resolved once at route registration from the boot-time
// access policy; an empty set means the module is unrestricted and every
// request passes untouched.
//
// For restricted modules the chain is: require the Authorization header
// (missing -> 403), extract the bearer token (malformed -> 401), verify it
// (expired/invalid -> 401), then match the embedded role against the
// allowed set (mismatch -> 403). On success the user id and role are
// stored in the context.
func ModuleAccess(policy config.AccessPolicy, module string, issuer *token.Issuer) echo.MiddlewareFunc {
	allowed := policy.Roles(module)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(allowed) == 0 {
				return next(c)
			}
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
			if !allowed[claims.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
			}
			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}
