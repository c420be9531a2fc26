package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAdmin must be registered after RequireAuth.
func (g *Gate) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, ok := RoleFromContext(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "access denied: no token provided")
		}
		if !role.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin privileges required")
		}
		return next(c)
	}
}
