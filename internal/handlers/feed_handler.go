package handlers

import (
	"math"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/linkuphq/backend/internal/repositories"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	postRepository       repositories.PostRepository
	userRepository       repositories.UserRepository
	connectionRepository repositories.ConnectionRepository
	likeRepository       repositories.LikeRepository
	commentRepository    repositories.CommentRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	connectionRepo repositories.ConnectionRepository,
	likeRepo repositories.LikeRepository,
	commentRepo repositories.CommentRepository,
) *FeedHandler {
	return &FeedHandler{
		postRepository:       postRepo,
		userRepository:       userRepo,
		connectionRepository: connectionRepo,
		likeRepository:       likeRepo,
		commentRepository:    commentRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns the caller's feed: posts authored by the caller or
// by anyone they hold an accepted connection with, newest first,
// recomputed on every call.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	userID := getUserIDFromContext(c)
	page, pageSize := clampPagination(c)

	peerIDs, err := h.connectionRepository.GetAcceptedPeerIDs(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}
	authorIDs := append(peerIDs, userID)

	posts, err := h.postRepository.GetPostsByAuthors(authorIDs, (page-1)*pageSize, pageSize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	totalItems, err := h.postRepository.CountPostsByAuthors(authorIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	views, err := buildPostViews(posts, userID, h.userRepository, h.likeRepository, h.commentRepository)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	totalPages := int(math.Ceil(float64(totalItems) / float64(pageSize)))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"posts": views,
		},
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      totalItems,
			"itemsPerPage":    pageSize,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}
