package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"gorm.io/gorm"

	"github.com/linkuphq/backend/internal/models"
	"github.com/linkuphq/backend/internal/repositories"
	"github.com/linkuphq/backend/pkg/sanitize"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository      repositories.CommentRepository
	postRepository         repositories.PostRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
) *CommentHandler {
	return &CommentHandler{
		commentRepository:      commentRepo,
		postRepository:         postRepo,
		userRepository:         userRepo,
		notificationRepository: notificationRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetComments)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID := getUserIDFromContext(c)

	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	content := sanitize.Clean(req.Content)
	if content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Comment content cannot be empty")
	}

	post, err := h.postRepository.GetPostByID(uint(postID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	comment := &models.Comment{
		PostID:   uint(postID),
		AuthorID: userID,
		Content:  content,
	}

	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create comment")
	}

	author, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	if post.AuthorID != userID {
		createNotification(c, h.notificationRepository, &models.Notification{
			RecipientID: post.AuthorID,
			Type:        models.NotificationPostComment,
			Context:     bson.M{"actor_id": userID, "post_id": post.ID, "comment_id": comment.ID},
			Message:     fmt.Sprintf("%s %s commented on your post", author.FirstName, author.LastName),
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Comment created",
		"data": models.CommentView{
			Comment: *comment,
			Author:  author.ToPublic(),
		},
	})
}

// GetComments lists a post's comments oldest first, each with its
// author's public profile.
func (h *CommentHandler) GetComments(c echo.Context) error {
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

	comments, err := h.commentRepository.GetCommentsByPostID(uint(postID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	authorIDs := make([]uint, 0, len(comments))
	seen := make(map[uint]bool, len(comments))
	for _, comment := range comments {
		if !seen[comment.AuthorID] {
			seen[comment.AuthorID] = true
			authorIDs = append(authorIDs, comment.AuthorID)
		}
	}

	authors, err := h.userRepository.GetUsersByIDs(authorIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	views := make([]models.CommentView, 0, len(comments))
	for _, comment := range comments {
		view := models.CommentView{Comment: comment}
		if author, ok := authors[comment.AuthorID]; ok {
			view.Author = author.ToPublic()
		}
		views = append(views, view)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    views,
	})
}

// DeleteComment deletes a comment. The comment's author and the parent
// post's author may both delete; anyone else gets the same not-found
// response as a missing comment.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID := getUserIDFromContext(c)

	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(uint(commentID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	if comment.AuthorID != userID {
		post, err := h.postRepository.GetPostByID(comment.PostID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
		}
		if post.AuthorID != userID {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
	}

	if err := h.commentRepository.DeleteComment(uint(commentID)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete comment")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Comment deleted",
	})
}
