package ratelimit

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// New builds a per-IP limiter that sheds excess load with 429 instead of
// queueing. requests is the sustained budget over the window.
func New(requests int, window time.Duration) echo.MiddlewareFunc {
	limit := rate.Limit(float64(requests) / window.Seconds())

	cfg := middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      limit,
			Burst:     requests,
			ExpiresIn: window,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
		},
	}
	return middleware.RateLimiterWithConfig(cfg)
}
