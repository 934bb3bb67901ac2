package http

import (
	"market-khabri/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewServer builds the Echo instance with every route mounted under /api.
func NewServer(analysis *AnalysisHandler, chat *ChatHandler, health *HealthHandler, allowOrigins []string, log *logger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{echo.GET, echo.POST, echo.OPTIONS},
	}))

	api := e.Group("/api")
	analysis.RegisterRoutes(api)
	chat.RegisterRoutes(api)
	health.RegisterRoutes(e, api)
	return e
}

// requestLogger tags the request context with its id and logs each request.
func requestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			ctx := logger.WithRequestID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			log.DebugContext(ctx, "HTTP request",
				logger.StringField("method", c.Request().Method),
				logger.StringField("path", c.Path()),
				logger.IntField("status", c.Response().Status),
			)
			return err
		}
	}
}
