package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/linkuphq/backend/internal/models"
	"github.com/linkuphq/backend/internal/repositories"
	"github.com/linkuphq/backend/pkg/logger"
	"github.com/linkuphq/backend/pkg/sanitize"
	"github.com/linkuphq/backend/pkg/storage"
)

const maxAvatarSize = 5 << 20 // 5 MB

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	store          *storage.Store // nil when S3 is not configured
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, store *storage.Store) *UserHandler {
	return &UserHandler{userRepository: userRepo, store: store}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)    // Own profile, including email
	g.PUT("/profile", h.UpdateProfile) // Partial update
	g.GET("/users/:id", h.GetUser)     // Another user's public profile
	g.GET("/users/suggestions", h.GetSuggestions)
	g.GET("/users/search", h.SearchUsers)
	if h.store != nil {
		g.POST("/profile/avatar", h.UploadAvatar)
	}
}

// GetProfile retrieves the authenticated user's own profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID := getUserIDFromContext(c)

	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    user,
	})
}

// UpdateProfile applies a partial update to the authenticated user's
// profile. Only fields present in the request change; free-text fields
// are sanitized before persisting.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	if req.FirstName != nil {
		user.FirstName = sanitize.Clean(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = sanitize.Clean(*req.LastName)
	}
	if req.Headline != nil {
		user.Headline = sanitize.Clean(*req.Headline)
	}
	if req.Bio != nil {
		user.Bio = sanitize.Clean(*req.Bio)
	}
	if req.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Profile updated",
		"data":    user,
	})
}

// GetUser retrieves another user's public profile by ID
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.userRepository.GetUserByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    user.ToPublic(),
	})
}

// GetSuggestions lists users the caller has no connection with, in any
// state and either direction.
func (h *UserHandler) GetSuggestions(c echo.Context) error {
	userID := getUserIDFromContext(c)

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 50 {
		limit = 10
	}

	users, err := h.userRepository.GetSuggestions(userID, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	profiles := make([]models.PublicProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.ToPublic())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    profiles,
	})
}

// SearchUsers searches for users by a query string (name or email)
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if strings.TrimSpace(query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query 'q' is required")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 50 {
		limit = 20
	}

	users, err := h.userRepository.SearchUsers(query, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	profiles := make([]models.PublicProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.ToPublic())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    profiles,
	})
}

// UploadAvatar accepts a multipart image, stores it in the blob store
// and points the profile's avatar URL at it.
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	userID := getUserIDFromContext(c)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Avatar file is required")
	}
	if fileHeader.Size > maxAvatarSize {
		return echo.NewHTTPError(http.StatusBadRequest, "Avatar must be smaller than 5 MB")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return echo.NewHTTPError(http.StatusBadRequest, "Avatar must be an image")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read avatar")
	}
	defer src.Close()

	key := fmt.Sprintf("avatars/%d/%s%s", userID, uuid.NewString(), filepath.Ext(fileHeader.Filename))
	url, err := h.store.Upload(c.Request().Context(), key, src, contentType)
	if err != nil {
		logger.Error().Err(err).Uint("user_id", userID).Msg("Avatar upload failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload avatar")
	}

	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}
	user.AvatarURL = url
	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Avatar updated",
		"data":    echo.Map{"avatar_url": url},
	})
}
