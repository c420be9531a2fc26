package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/herbvita/shop_backend/internal/models"
	"github.com/herbvita/shop_backend/internal/service/token"
)

const HeaderAuthToken = "X-Auth-Token"

type Gate struct {
	Tokens *token.Service
}

func NewGate(tokens *token.Service) *Gate {
	return &Gate{Tokens: tokens}
}

// RequireAuth accepts the access token from the session cookie or the
// X-Auth-Token header. Expired tokens answer with a distinguishable message
// so clients know to hit the refresh endpoint instead of re-authenticating.
func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := ""
		if cookie, err := c.Cookie(token.AccessCookieName); err == nil {
			raw = cookie.Value
		}
		if raw == "" {
			raw = c.Request().Header.Get(HeaderAuthToken)
		}
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "access denied: no token provided")
		}

		claims, err := g.Tokens.VerifyAccessToken(raw)
		if err != nil {
			if errors.Is(err, token.ErrTokenExpired) {
				return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		userID, err := token.UserID(claims.Subject)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		role, ok := models.ParseRole(claims.Role)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		SetUserContext(c, userID, role)
		return next(c)
	}
}
