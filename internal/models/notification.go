package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification type tags.
const (
	NotificationConnectionRequest  = "connection_request"
	NotificationConnectionAccepted = "connection_accepted"
	NotificationPostLike           = "post_like"
	NotificationPostComment        = "post_comment"
)

// Notification represents an in-app notification stored in MongoDB.
// Context is a polymorphic payload whose keys depend on Type
// (actor_id always; post_id or connection_id as applicable).
type Notification struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	RecipientID uint               `json:"recipient_id" bson:"recipient_id"`
	Type        string             `json:"type" bson:"type"`
	Context     bson.M             `json:"context,omitempty" bson:"context,omitempty"`
	Message     string             `json:"message" bson:"message"`
	IsRead      bool               `json:"is_read" bson:"is_read"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
