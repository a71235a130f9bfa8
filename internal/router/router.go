package router

import (
	"errors"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/linkuphq/backend/internal/handlers"
	"github.com/linkuphq/backend/internal/middleware"
	"github.com/linkuphq/backend/internal/models"
	"github.com/linkuphq/backend/internal/repositories"
	"github.com/linkuphq/backend/pkg/config"
	"github.com/linkuphq/backend/pkg/logger"
	"github.com/linkuphq/backend/pkg/storage"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = errorHandler
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(middleware.LoggingMiddleware())
	logger.Info().Msg("Global middleware configured")
}

// errorHandler renders every error through the standard response
// envelope so clients can always read success and message.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Msg("Request failed")
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, echo.Map{"success": false, "message": message})
	}
	if writeErr != nil {
		logger.Error().Err(writeErr).Msg("Failed to write error response")
	}
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB, firebaseAuthClient *auth.Client, store *storage.Store) error {
	// AutoMigrate PostgreSQL models
	err := db.Postgres.AutoMigrate(
		&models.User{},
		&models.Connection{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
	)
	if err != nil {
		return err
	}
	logger.Info().Msg("PostgreSQL auto-migrations completed")

	mongoDB := db.Mongo.Database(cfg.MongoDBName)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	connectionRepo := repositories.NewPostgresConnectionRepository(db.Postgres)
	postRepo := repositories.NewPostgresPostRepository(db.Postgres)
	commentRepo := repositories.NewPostgresCommentRepository(db.Postgres)
	likeRepo := repositories.NewPostgresLikeRepository(db.Postgres)
	conversationRepo := repositories.NewMongoConversationRepository(mongoDB)
	notificationRepo := repositories.NewMongoNotificationRepository(mongoDB)

	// Health check - always accessible
	healthHandler := handlers.NewHealthHandler(db.Postgres, db.Mongo)
	e.GET("/health", healthHandler.HealthCheck)

	// --- Unprotected routes for authentication, rate limited per IP ---
	authGroup := e.Group("/api/v1/auth")
	authLimiter := middleware.NewIPRateLimiter(rate.Limit(cfg.AuthRateLimit), cfg.AuthRateBurst)
	authGroup.Use(middleware.RateLimitMiddleware(authLimiter))
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, cfg.JWTSecret, cfg.TokenExpiryDays)
	authHandler.RegisterAuthRoutes(authGroup)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	userHandler := handlers.NewUserHandler(userRepo, store)
	userHandler.RegisterProfileRoutes(api)

	connectionHandler := handlers.NewConnectionHandler(connectionRepo, userRepo, notificationRepo)
	connectionHandler.RegisterConnectionRoutes(api)

	postHandler := handlers.NewPostHandler(postRepo, userRepo, likeRepo, commentRepo)
	postHandler.RegisterPostRoutes(api)

	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo, notificationRepo)
	commentHandler.RegisterCommentRoutes(api)

	likeHandler := handlers.NewLikeHandler(likeRepo, postRepo, notificationRepo)
	likeHandler.RegisterLikeRoutes(api)

	feedHandler := handlers.NewFeedHandler(postRepo, userRepo, connectionRepo, likeRepo, commentRepo)
	feedHandler.RegisterFeedRoutes(api)

	conversationHandler := handlers.NewConversationHandler(conversationRepo, userRepo)
	conversationHandler.RegisterConversationRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	logger.Info().Msg("All routes configured")
	return nil
}
