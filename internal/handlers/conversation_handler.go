package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/linkuphq/backend/internal/models"
	"github.com/linkuphq/backend/internal/repositories"
	"github.com/linkuphq/backend/pkg/sanitize"
)

// ConversationHandler handles HTTP requests related to private
// conversations between two users.
type ConversationHandler struct {
	conversationRepository repositories.ConversationRepository
	userRepository         repositories.UserRepository
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(conversationRepo repositories.ConversationRepository, userRepo repositories.UserRepository) *ConversationHandler {
	return &ConversationHandler{
		conversationRepository: conversationRepo,
		userRepository:         userRepo,
	}
}

// RegisterConversationRoutes registers conversation-related routes
func (h *ConversationHandler) RegisterConversationRoutes(g *echo.Group) {
	g.POST("/conversations", h.CreateConversation)
	g.GET("/conversations", h.ListConversations)
	g.GET("/conversations/:id", h.GetConversation)
	g.POST("/conversations/:id/messages", h.SendMessage)
	g.PUT("/conversations/:id/read", h.MarkRead)
}

// CreateConversation opens a conversation with another user, seeded
// with an initial message. Each pair of users has at most one
// conversation: calling again returns the existing thread untouched
// and the new initial message is discarded.
func (h *ConversationHandler) CreateConversation(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.ParticipantID == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot start a conversation with yourself")
	}

	content := sanitize.Clean(req.InitialMessage)
	if content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Message content cannot be empty")
	}

	if _, err := h.userRepository.GetUserByID(req.ParticipantID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	seed := models.Message{
		ID:       uuid.NewString(),
		SenderID: userID,
		Content:  content,
		SentAt:   time.Now().UTC(),
	}

	conv, created, err := h.conversationRepository.GetOrCreateConversation(c.Request().Context(), userID, req.ParticipantID, seed)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create conversation")
	}

	detail, err := h.buildDetail(c, conv)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	status := http.StatusOK
	message := "Conversation already exists"
	if created {
		status = http.StatusCreated
		message = "Conversation created"
	}

	return c.JSON(status, echo.Map{
		"success": true,
		"message": message,
		"data":    detail,
	})
}

// ListConversations lists the caller's conversations, most recently
// active first, with participant profiles and the latest message.
func (h *ConversationHandler) ListConversations(c echo.Context) error {
	userID := getUserIDFromContext(c)

	convs, err := h.conversationRepository.GetConversationsForUser(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	profiles, err := h.resolveParticipants(convs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	summaries := make([]models.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summary := models.ConversationSummary{
			ID:            conv.ID,
			Participants:  participantProfiles(conv.ParticipantIDs, profiles),
			LastMessageAt: conv.LastMessageAt,
			CreatedAt:     conv.CreatedAt,
		}
		if len(conv.Messages) > 0 {
			last := conv.Messages[len(conv.Messages)-1]
			view := messageView(last, profiles)
			summary.LastMessage = &view
		}
		summaries = append(summaries, summary)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    summaries,
	})
}

// GetConversation retrieves the full thread. A conversation that does
// not exist and one the caller is not part of produce the same
// not-found response.
func (h *ConversationHandler) GetConversation(c echo.Context) error {
	userID := getUserIDFromContext(c)

	conv, err := h.conversationRepository.GetConversationForUser(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Conversation not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	detail, err := h.buildDetail(c, conv)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    detail,
	})
}

// SendMessage appends a message to a conversation the caller
// participates in. Messages are append-only.
func (h *ConversationHandler) SendMessage(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	content := sanitize.Clean(req.Content)
	if content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Message content cannot be empty")
	}

	msg := models.Message{
		ID:       uuid.NewString(),
		SenderID: userID,
		Content:  content,
		SentAt:   time.Now().UTC(),
	}

	err := h.conversationRepository.AppendMessage(c.Request().Context(), c.Param("id"), userID, msg)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Conversation not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send message")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Message sent",
		"data":    msg,
	})
}

// MarkRead stamps every unread message from the other participant as
// read at the current time.
func (h *ConversationHandler) MarkRead(c echo.Context) error {
	userID := getUserIDFromContext(c)

	err := h.conversationRepository.MarkMessagesRead(c.Request().Context(), c.Param("id"), userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Conversation not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark messages as read")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Messages marked as read",
	})
}

// resolveParticipants batch-loads the public profiles for every
// participant across a set of conversations.
func (h *ConversationHandler) resolveParticipants(convs []models.Conversation) (map[uint]models.PublicProfile, error) {
	idSet := make(map[uint]bool)
	ids := make([]uint, 0)
	for _, conv := range convs {
		for _, id := range conv.ParticipantIDs {
			if !idSet[id] {
				idSet[id] = true
				ids = append(ids, id)
			}
		}
	}

	users, err := h.userRepository.GetUsersByIDs(ids)
	if err != nil {
		return nil, err
	}

	profiles := make(map[uint]models.PublicProfile, len(users))
	for id, user := range users {
		profiles[id] = user.ToPublic()
	}
	return profiles, nil
}

func (h *ConversationHandler) buildDetail(c echo.Context, conv *models.Conversation) (*models.ConversationDetail, error) {
	profiles, err := h.resolveParticipants([]models.Conversation{*conv})
	if err != nil {
		return nil, err
	}

	messages := make([]models.MessageView, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		messages = append(messages, messageView(msg, profiles))
	}

	return &models.ConversationDetail{
		ID:            conv.ID,
		Participants:  participantProfiles(conv.ParticipantIDs, profiles),
		Messages:      messages,
		LastMessageAt: conv.LastMessageAt,
		CreatedAt:     conv.CreatedAt,
		UpdatedAt:     conv.UpdatedAt,
	}, nil
}

func participantProfiles(ids []uint, profiles map[uint]models.PublicProfile) []models.PublicProfile {
	out := make([]models.PublicProfile, 0, len(ids))
	for _, id := range ids {
		if p, ok := profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func messageView(msg models.Message, profiles map[uint]models.PublicProfile) models.MessageView {
	view := models.MessageView{Message: msg}
	if p, ok := profiles[msg.SenderID]; ok {
		view.SenderName = p.FirstName + " " + p.LastName
	}
	return view
}
