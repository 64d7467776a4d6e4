// Package router wires the control server routes.
package router

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/azizemirhan/hubcenter/internal/auth"
	"github.com/azizemirhan/hubcenter/internal/config"
	"github.com/azizemirhan/hubcenter/internal/handler"
	"github.com/azizemirhan/hubcenter/internal/logging"
	"github.com/azizemirhan/hubcenter/internal/metrics"
	middlewarepkg "github.com/azizemirhan/hubcenter/internal/middleware"
)

// confirmRate bounds how often confirmations may be posted.
var confirmRate = config.RateLimitConfig{Requests: 10, Interval: time.Minute}

// Dependencies aggregates what the control server routes need.
type Dependencies struct {
	Control *handler.ControlHandler
	Metrics *metrics.Metrics
	// Tokens enables bearer authentication when non-nil.
	Tokens *auth.TokenManager
	Logger logging.Logger
}

// New builds the control server.
func New(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middlewarepkg.RequestID(), middlewarepkg.Logging(deps.Logger), echoMiddleware.Recover())
	Register(e, deps)
	return e
}

// Register wires all HTTP routes for the control server.
func Register(e *echo.Echo, deps Dependencies) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))

	secured := e.Group("", middlewarepkg.Bearer(deps.Tokens))
	secured.GET("/status", deps.Control.Status, middlewarepkg.RequireRole(auth.RoleViewer))

	ops := secured.Group("/operator")
	ops.GET("/pending", deps.Control.Pending, middlewarepkg.RequireRole(auth.RoleViewer))
	ops.POST("/confirm", deps.Control.Confirm, middlewarepkg.RequireRole(auth.RoleOperator), middlewarepkg.RateLimit(confirmRate))
}
