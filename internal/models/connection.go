package models

import "time"

// Connection request lifecycle. A rejected request is terminal: the pair
// cannot connect again unless the row is removed.
const (
	ConnectionStatusPending  = "pending"
	ConnectionStatusAccepted = "accepted"
	ConnectionStatusRejected = "rejected"
)

// Connection represents a connection request between two users. The
// composite unique index covers the exact (requester, addressee)
// direction only; the reverse direction is checked in the repository
// before insert.
type Connection struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RequesterID uint      `json:"requester_id" gorm:"not null;uniqueIndex:idx_requester_addressee"`
	AddresseeID uint      `json:"addressee_id" gorm:"not null;uniqueIndex:idx_requester_addressee"`
	Status      string    `json:"status" gorm:"type:varchar(20);default:'pending'"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateConnectionRequest defines the request body for sending a connection request
type CreateConnectionRequest struct {
	AddresseeID uint `json:"addressee_id" validate:"required"`
}

// ConnectionView decorates a connection with the profile of the party
// that is not the viewer: the other side of an accepted connection, or
// the requester of an incoming pending request.
type ConnectionView struct {
	Connection
	Peer PublicProfile `json:"peer"`
}
