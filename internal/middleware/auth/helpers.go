package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/herbvita/shop_backend/internal/models"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

func SetUserContext(c echo.Context, userID uint, role models.Role) {
	c.Set(ctxUserID, userID)
	c.Set(ctxRole, role)
}

func UserIDFromContext(c echo.Context) (uint, bool) {
	id, ok := c.Get(ctxUserID).(uint)
	return id, ok
}

func RoleFromContext(c echo.Context) (models.Role, bool) {
	role, ok := c.Get(ctxRole).(models.Role)
	return role, ok
}

// MustUserID is for handlers behind RequireAuth.
func MustUserID(c echo.Context) (uint, error) {
	id, ok := UserIDFromContext(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "access denied: no token provided")
	}
	return id, nil
}
