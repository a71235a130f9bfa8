package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// HealthHandler reports service and datastore health
type HealthHandler struct {
	postgres *gorm.DB
	mongo    *mongo.Client
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(postgres *gorm.DB, mongoClient *mongo.Client) *HealthHandler {
	return &HealthHandler{postgres: postgres, mongo: mongoClient}
}

// HealthCheck pings both datastores. A failing store degrades the
// status but the endpoint itself still answers 200 so load balancers
// can read the detail.
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	ctx := c.Request().Context()

	status := "ok"
	postgresStatus := "ok"
	mongoStatus := "ok"

	if h.postgres != nil {
		if sqlDB, err := h.postgres.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			postgresStatus = "unavailable"
			status = "degraded"
		}
	}

	if h.mongo != nil {
		if err := h.mongo.Ping(ctx, nil); err != nil {
			mongoStatus = "unavailable"
			status = "degraded"
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":   status,
		"service":  "linkup-api",
		"time":     time.Now().UTC(),
		"postgres": postgresStatus,
		"mongo":    mongoStatus,
	})
}
