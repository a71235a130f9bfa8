package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"gorm.io/gorm"

	"github.com/linkuphq/backend/internal/models"
	"github.com/linkuphq/backend/internal/repositories"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository         repositories.LikeRepository
	postRepository         repositories.PostRepository
	notificationRepository repositories.NotificationRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, postRepo repositories.PostRepository, notificationRepo repositories.NotificationRepository) *LikeHandler {
	return &LikeHandler{
		likeRepository:         likeRepo,
		postRepository:         postRepo,
		notificationRepository: notificationRepo,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/likes", h.LikePost)
	g.DELETE("/posts/:post_id/likes", h.UnlikePost)
	g.GET("/posts/:post_id/likes/status", h.GetLikeStatus)
}

// LikePost records the caller's like on a post. Liking the same post
// twice is a conflict, including when two requests race.
func (h *LikeHandler) LikePost(c echo.Context) error {
	userID := getUserIDFromContext(c)

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	post, err := h.postRepository.GetPostByID(uint(postID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	like := &models.Like{
		UserID: userID,
		PostID: uint(postID),
	}

	if err := h.likeRepository.CreateLike(like); err != nil {
		if errors.Is(err, repositories.ErrAlreadyLiked) {
			return echo.NewHTTPError(http.StatusConflict, "Post already liked")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to like post")
	}

	if post.AuthorID != userID {
		if claims := getClaimsFromContext(c); claims != nil {
			createNotification(c, h.notificationRepository, &models.Notification{
				RecipientID: post.AuthorID,
				Type:        models.NotificationPostLike,
				Context:     bson.M{"actor_id": userID, "post_id": post.ID},
				Message:     fmt.Sprintf("%s %s liked your post", claims.FirstName, claims.LastName),
			})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Post liked",
		"data":    like,
	})
}

// UnlikePost removes the caller's like from a post. Unliking a post
// the caller never liked is a conflict.
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	userID := getUserIDFromContext(c)

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	if _, err := h.postRepository.GetPostByID(uint(postID)); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	if err := h.likeRepository.DeleteLike(uint(postID), userID); err != nil {
		if errors.Is(err, repositories.ErrNotLiked) {
			return echo.NewHTTPError(http.StatusConflict, "Post is not liked")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to unlike post")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Post unliked",
	})
}

// GetLikeStatus reports whether the caller has liked a specific post
func (h *LikeHandler) GetLikeStatus(c echo.Context) error {
	userID := getUserIDFromContext(c)

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	if _, err := h.postRepository.GetPostByID(uint(postID)); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	hasLiked, err := h.likeRepository.HasUserLikedPost(uint(postID), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"post_id": postID, "has_liked": hasLiked},
	})
}
