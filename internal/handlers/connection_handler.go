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

// ConnectionHandler handles HTTP requests related to connections
type ConnectionHandler struct {
	connectionRepository   repositories.ConnectionRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
}

// NewConnectionHandler creates a new ConnectionHandler
func NewConnectionHandler(connectionRepo repositories.ConnectionRepository, userRepo repositories.UserRepository, notificationRepo repositories.NotificationRepository) *ConnectionHandler {
	return &ConnectionHandler{
		connectionRepository:   connectionRepo,
		userRepository:         userRepo,
		notificationRepository: notificationRepo,
	}
}

// RegisterConnectionRoutes registers connection-related routes
func (h *ConnectionHandler) RegisterConnectionRoutes(g *echo.Group) {
	g.POST("/connections", h.SendRequest)
	g.GET("/connections", h.ListConnections)
	g.GET("/connections/pending", h.ListPendingReceived)
	g.PUT("/connections/:id/accept", h.AcceptRequest)
	g.PUT("/connections/:id/reject", h.RejectRequest)
	g.DELETE("/connections/:id", h.RemoveConnection)
}

// SendRequest handles sending a connection request
func (h *ConnectionHandler) SendRequest(c echo.Context) error {
	userID := getUserIDFromContext(c)

	var req models.CreateConnectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.AddresseeID == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot send a connection request to yourself")
	}

	// Check if the addressee exists
	if _, err := h.userRepository.GetUserByID(req.AddresseeID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	conn := &models.Connection{
		RequesterID: userID,
		AddresseeID: req.AddresseeID,
	}

	if err := h.connectionRepository.SendRequest(conn); err != nil {
		switch {
		case errors.Is(err, repositories.ErrAlreadyConnected):
			return echo.NewHTTPError(http.StatusConflict, "Users are already connected")
		case errors.Is(err, repositories.ErrRequestPending):
			return echo.NewHTTPError(http.StatusConflict, "Connection request already pending")
		case errors.Is(err, repositories.ErrRequestRejected):
			return echo.NewHTTPError(http.StatusConflict, "Connection request was rejected")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send connection request")
		}
	}

	if claims := getClaimsFromContext(c); claims != nil {
		createNotification(c, h.notificationRepository, &models.Notification{
			RecipientID: req.AddresseeID,
			Type:        models.NotificationConnectionRequest,
			Context:     bson.M{"actor_id": userID, "connection_id": conn.ID},
			Message:     fmt.Sprintf("%s %s sent you a connection request", claims.FirstName, claims.LastName),
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Connection request sent",
		"data":    conn,
	})
}

// ListConnections lists the caller's accepted connections, each with
// the other party's public profile.
func (h *ConnectionHandler) ListConnections(c echo.Context) error {
	userID := getUserIDFromContext(c)

	conns, err := h.connectionRepository.GetAcceptedConnections(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	views, err := h.decorateWithPeers(conns, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    views,
	})
}

// ListPendingReceived lists pending requests addressed to the caller,
// newest first, each with the requester's public profile.
func (h *ConnectionHandler) ListPendingReceived(c echo.Context) error {
	userID := getUserIDFromContext(c)

	conns, err := h.connectionRepository.GetPendingReceived(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	views, err := h.decorateWithPeers(conns, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    views,
	})
}

// AcceptRequest accepts a pending request addressed to the caller
func (h *ConnectionHandler) AcceptRequest(c echo.Context) error {
	return h.updateStatus(c, models.ConnectionStatusAccepted)
}

// RejectRequest rejects a pending request addressed to the caller.
// Rejection is terminal: the pair cannot connect again while the row
// exists.
func (h *ConnectionHandler) RejectRequest(c echo.Context) error {
	return h.updateStatus(c, models.ConnectionStatusRejected)
}

func (h *ConnectionHandler) updateStatus(c echo.Context, newStatus string) error {
	userID := getUserIDFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid connection ID")
	}

	conn, err := h.connectionRepository.GetConnectionByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Connection request not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	// Only the addressee may answer a request.
	if conn.AddresseeID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized to act on this connection request")
	}

	if conn.Status != models.ConnectionStatusPending {
		return echo.NewHTTPError(http.StatusConflict, "Connection request is no longer pending")
	}

	if err := h.connectionRepository.UpdateStatus(conn.ID, newStatus); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update connection request")
	}
	conn.Status = newStatus

	if newStatus == models.ConnectionStatusAccepted {
		if claims := getClaimsFromContext(c); claims != nil {
			createNotification(c, h.notificationRepository, &models.Notification{
				RecipientID: conn.RequesterID,
				Type:        models.NotificationConnectionAccepted,
				Context:     bson.M{"actor_id": userID, "connection_id": conn.ID},
				Message:     fmt.Sprintf("%s %s accepted your connection request", claims.FirstName, claims.LastName),
			})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Connection request " + newStatus,
		"data":    conn,
	})
}

// RemoveConnection hard-deletes a connection the caller is a party to,
// whatever its status: cancelling a sent request, clearing a rejection
// and disconnecting all go through here.
func (h *ConnectionHandler) RemoveConnection(c echo.Context) error {
	userID := getUserIDFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid connection ID")
	}

	conn, err := h.connectionRepository.GetConnectionByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Connection not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}

	// A connection is only visible to its two parties.
	if conn.RequesterID != userID && conn.AddresseeID != userID {
		return echo.NewHTTPError(http.StatusNotFound, "Connection not found")
	}

	if err := h.connectionRepository.DeleteConnection(conn.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to remove connection")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Connection removed",
	})
}

// decorateWithPeers resolves the profile of the non-viewer party of
// each connection.
func (h *ConnectionHandler) decorateWithPeers(conns []models.Connection, viewerID uint) ([]models.ConnectionView, error) {
	peerIDs := make([]uint, 0, len(conns))
	for _, conn := range conns {
		if conn.RequesterID == viewerID {
			peerIDs = append(peerIDs, conn.AddresseeID)
		} else {
			peerIDs = append(peerIDs, conn.RequesterID)
		}
	}

	usersByID, err := h.userRepository.GetUsersByIDs(peerIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.ConnectionView, 0, len(conns))
	for _, conn := range conns {
		peerID := conn.RequesterID
		if peerID == viewerID {
			peerID = conn.AddresseeID
		}
		peer := usersByID[peerID]
		views = append(views, models.ConnectionView{
			Connection: conn,
			Peer:       peer.ToPublic(),
		})
	}
	return views, nil
}
