package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/azizemirhan/hubcenter/internal/logging"
)

// Logging writes one structured entry per control server request.
func Logging(logger logging.Logger) echo.MiddlewareFunc {
	logger = logging.OrDiscard(logger)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			entry := logger.WithFields(logging.Fields{
				"request_id": RequestIDFromContext(c),
				"method":     c.Request().Method,
				"path":       c.Request().URL.Path,
				"status":     c.Response().Status,
				"latency":    time.Since(start).String(),
			})
			if err != nil {
				entry.WithError(err).Warn("control request failed")
			} else {
				entry.Debug("control request")
			}
			return err
		}
	}
}
