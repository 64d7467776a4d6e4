package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/azizemirhan/hubcenter/internal/config"
)

// RateLimit applies a token bucket limiter shared by every request of the
// route it wraps. A zero config disables it.
func RateLimit(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	every := cfg.Every()
	if every <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	limiter := rate.NewLimiter(rate.Every(every), cfg.Requests)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow() {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
