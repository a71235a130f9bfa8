package repositories

import (
	"errors"

	"github.com/linkuphq/backend/internal/models"
	"gorm.io/gorm"
)

// ConnectionRepository defines the interface for connection data operations
type ConnectionRepository interface {
	SendRequest(conn *models.Connection) error
	GetConnectionByID(id uint) (*models.Connection, error)
	GetAcceptedConnections(userID uint) ([]models.Connection, error)
	GetPendingReceived(userID uint) ([]models.Connection, error)
	UpdateStatus(id uint, status string) error
	DeleteConnection(id uint) error
	GetAcceptedPeerIDs(userID uint) ([]uint, error)
}

// PostgresConnectionRepository implements ConnectionRepository for PostgreSQL
type PostgresConnectionRepository struct {
	db *gorm.DB
}

// NewPostgresConnectionRepository creates a new PostgresConnectionRepository
func NewPostgresConnectionRepository(db *gorm.DB) *PostgresConnectionRepository {
	return &PostgresConnectionRepository{db: db}
}

// SendRequest creates a new pending connection request. A record in
// either direction blocks the insert with a status-specific error; the
// unique index on (requester_id, addressee_id) catches racing
// duplicates that slip past the existence check.
func (r *PostgresConnectionRepository) SendRequest(conn *models.Connection) error {
	var existing models.Connection
	err := r.db.Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
		conn.RequesterID, conn.AddresseeID, conn.AddresseeID, conn.RequesterID).First(&existing).Error

	if err == nil {
		switch existing.Status {
		case models.ConnectionStatusAccepted:
			return ErrAlreadyConnected
		case models.ConnectionStatusRejected:
			return ErrRequestRejected
		default:
			return ErrRequestPending
		}
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	conn.Status = models.ConnectionStatusPending
	if err := r.db.Create(conn).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrRequestPending
		}
		return err
	}
	return nil
}

// GetConnectionByID retrieves a connection by ID
func (r *PostgresConnectionRepository) GetConnectionByID(id uint) (*models.Connection, error) {
	var conn models.Connection
	if err := r.db.First(&conn, id).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

// GetAcceptedConnections retrieves all accepted connections where the
// user is either party.
func (r *PostgresConnectionRepository) GetAcceptedConnections(userID uint) ([]models.Connection, error) {
	var conns []models.Connection
	err := r.db.Where("(requester_id = ? OR addressee_id = ?) AND status = ?",
		userID, userID, models.ConnectionStatusAccepted).
		Order("updated_at DESC").
		Find(&conns).Error
	if err != nil {
		return nil, err
	}
	return conns, nil
}

// GetPendingReceived retrieves pending requests addressed to the user,
// newest first.
func (r *PostgresConnectionRepository) GetPendingReceived(userID uint) ([]models.Connection, error) {
	var conns []models.Connection
	err := r.db.Where("addressee_id = ? AND status = ?", userID, models.ConnectionStatusPending).
		Order("created_at DESC").
		Find(&conns).Error
	if err != nil {
		return nil, err
	}
	return conns, nil
}

// UpdateStatus updates the status of a connection
func (r *PostgresConnectionRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Connection{}).Where("id = ?", id).Update("status", status).Error
}

// DeleteConnection hard-deletes a connection
func (r *PostgresConnectionRepository) DeleteConnection(id uint) error {
	return r.db.Delete(&models.Connection{}, id).Error
}

// GetAcceptedPeerIDs retrieves the IDs of every user the given user has
// an accepted connection with, for feed assembly.
func (r *PostgresConnectionRepository) GetAcceptedPeerIDs(userID uint) ([]uint, error) {
	var conns []models.Connection
	err := r.db.Where("(requester_id = ? OR addressee_id = ?) AND status = ?",
		userID, userID, models.ConnectionStatusAccepted).
		Find(&conns).Error
	if err != nil {
		return nil, err
	}

	peers := make([]uint, 0, len(conns))
	for _, c := range conns {
		if c.RequesterID == userID {
			peers = append(peers, c.AddresseeID)
		} else {
			peers = append(peers, c.RequesterID)
		}
	}
	return peers, nil
}
