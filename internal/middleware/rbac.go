package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/azizemirhan/hubcenter/internal/auth"
)

// RequireRole enforces that the request carries a role granting need.
func RequireRole(need string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			have, ok := c.Get(ContextKeyRole).(string)
			if !ok || have == "" {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "missing role"})
			}
			if !auth.Allows(have, need) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
			}
			return next(c)
		}
	}
}
