package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is an embedded sub-document of a conversation. Messages are
// append-only: no edit, no delete. ReadAt stays nil until the other
// participant marks the conversation read.
type Message struct {
	ID       string     `json:"id" bson:"id"` // uuid assigned at send time
	SenderID uint       `json:"sender_id" bson:"sender_id"`
	Content  string     `json:"content" bson:"content"`
	SentAt   time.Time  `json:"sent_at" bson:"sent_at"`
	ReadAt   *time.Time `json:"read_at,omitempty" bson:"read_at,omitempty"`
}

// Conversation represents a private message thread between exactly two
// users, stored in MongoDB with its messages embedded. At most one
// conversation exists per pair of participants, enforced at creation.
type Conversation struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ParticipantIDs []uint             `json:"participant_ids" bson:"participant_ids"`
	Messages       []Message          `json:"messages" bson:"messages"`
	LastMessageAt  time.Time          `json:"last_message_at" bson:"last_message_at"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreateConversationRequest defines the request body for opening a
// conversation. The initial message seeds the thread; calling again for
// the same pair returns the existing thread without re-seeding.
type CreateConversationRequest struct {
	ParticipantID  uint   `json:"participant_id" validate:"required"`
	InitialMessage string `json:"initial_message" validate:"required,min=1,max=2000"`
}

// SendMessageRequest defines the request body for sending a message
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// MessageView decorates a message with its sender's display name.
type MessageView struct {
	Message
	SenderName string `json:"sender_name"`
}

// ConversationSummary is a list entry: participant profiles resolved,
// message bodies omitted except the most recent one.
type ConversationSummary struct {
	ID            primitive.ObjectID `json:"id"`
	Participants  []PublicProfile    `json:"participants"`
	LastMessage   *MessageView       `json:"last_message,omitempty"`
	LastMessageAt time.Time          `json:"last_message_at"`
	CreatedAt     time.Time          `json:"created_at"`
}

// ConversationDetail is the full thread with every sender resolved.
type ConversationDetail struct {
	ID            primitive.ObjectID `json:"id"`
	Participants  []PublicProfile    `json:"participants"`
	Messages      []MessageView      `json:"messages"`
	LastMessageAt time.Time          `json:"last_message_at"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}
