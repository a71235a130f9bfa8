package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/linkuphq/backend/internal/models"
	"github.com/linkuphq/backend/pkg/logger"
)

// LoggingMiddleware logs all incoming requests with timing, escalating
// the level on 4xx and 5xx responses.
func LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			path := c.Request().URL.Path
			rawQuery := c.Request().URL.RawQuery

			err := next(c)
			if err != nil {
				// Hand the error off now so the logged status is final.
				c.Error(err)
			}

			latency := time.Since(start)
			status := c.Response().Status
			method := c.Request().Method
			clientIP := c.RealIP()
			userAgent := c.Request().UserAgent()

			// Get user ID if authenticated
			var userID uint
			if claims, ok := c.Get("user").(*models.JwtCustomClaims); ok {
				userID = claims.UserID
			}

			// Build log event
			event := logger.Log.Info()
			if status >= 400 {
				event = logger.Log.Warn()
			}
			if status >= 500 {
				event = logger.Log.Error()
			}

			event.
				Str("method", method).
				Str("path", path).
				Str("query", rawQuery).
				Int("status", status).
				Dur("latency", latency).
				Str("ip", clientIP).
				Str("user_agent", userAgent).
				Uint("user_id", userID).
				Int64("body_size", c.Response().Size).
				Msg("request")

			return nil
		}
	}
}
