package token

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

func (s *Service) createCookie(name, value string, exp time.Time) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if s.production {
		sameSite = http.SameSiteStrictMode
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   s.production,
		SameSite: sameSite,
	}
}

func (s *Service) AttachSessionCookies(c echo.Context, access string, accessExp time.Time, refresh string, refreshExp time.Time) {
	c.SetCookie(s.createCookie(AccessCookieName, access, accessExp))
	c.SetCookie(s.createCookie(RefreshCookieName, refresh, refreshExp))
}

func (s *Service) ClearSessionCookies(c echo.Context) {
	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		cookie := s.createCookie(name, "", time.Unix(0, 0))
		cookie.MaxAge = -1
		c.SetCookie(cookie)
	}
}
