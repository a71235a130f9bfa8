package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/linkuphq/backend/internal/models"
	"github.com/linkuphq/backend/internal/repositories"
	"github.com/linkuphq/backend/pkg/logger"
)

// createNotification persists a notification best-effort: a failure is
// logged but never fails the operation that triggered it.
func createNotification(c echo.Context, repo repositories.NotificationRepository, n *models.Notification) {
	if repo == nil {
		return
	}
	if err := repo.CreateNotification(c.Request().Context(), n); err != nil {
		logger.Warn().
			Err(err).
			Uint("recipient_id", n.RecipientID).
			Str("type", n.Type).
			Msg("Failed to create notification")
	}
}
