package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/linkuphq/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConversationRepository defines the interface for conversation data operations
type ConversationRepository interface {
	GetOrCreateConversation(ctx context.Context, userID, participantID uint, seed models.Message) (*models.Conversation, bool, error)
	GetConversationForUser(ctx context.Context, id string, userID uint) (*models.Conversation, error)
	GetConversationsForUser(ctx context.Context, userID uint) ([]models.Conversation, error)
	AppendMessage(ctx context.Context, id string, senderID uint, msg models.Message) error
	MarkMessagesRead(ctx context.Context, id string, readerID uint, at time.Time) error
}

// MongoConversationRepository implements ConversationRepository for MongoDB
type MongoConversationRepository struct {
	collection *mongo.Collection
}

// NewMongoConversationRepository creates a new MongoConversationRepository
func NewMongoConversationRepository(db *mongo.Database) *MongoConversationRepository {
	return &MongoConversationRepository{collection: db.Collection("conversations")}
}

// pairFilter matches the single conversation for an unordered pair of
// participants.
func pairFilter(a, b uint) bson.M {
	return bson.M{
		"participant_ids": bson.M{"$all": []uint{a, b}, "$size": 2},
	}
}

// GetOrCreateConversation returns the conversation for the pair,
// creating it with the seed message when none exists. The returned
// bool reports whether a new conversation was created; an existing
// conversation is returned unchanged and the seed is discarded.
func (r *MongoConversationRepository) GetOrCreateConversation(ctx context.Context, userID, participantID uint, seed models.Message) (*models.Conversation, bool, error) {
	var existing models.Conversation
	err := r.collection.FindOne(ctx, pairFilter(userID, participantID)).Decode(&existing)
	if err == nil {
		return &existing, false, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, false, err
	}

	now := seed.SentAt
	conv := models.Conversation{
		ID:             primitive.NewObjectID(),
		ParticipantIDs: []uint{userID, participantID},
		Messages:       []models.Message{seed},
		LastMessageAt:  now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := r.collection.InsertOne(ctx, conv); err != nil {
		return nil, false, err
	}
	return &conv, true, nil
}

// GetConversationForUser retrieves a conversation only when the user is
// a participant. An absent conversation and a conversation the user is
// not part of both come back as ErrNotFound.
func (r *MongoConversationRepository) GetConversationForUser(ctx context.Context, id string, userID uint) (*models.Conversation, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var conv models.Conversation
	err = r.collection.FindOne(ctx, bson.M{"_id": objID, "participant_ids": userID}).Decode(&conv)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// GetConversationsForUser retrieves the user's conversations, most
// recently active first.
func (r *MongoConversationRepository) GetConversationsForUser(ctx context.Context, userID uint) ([]models.Conversation, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"participant_ids": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var convs []models.Conversation
	if err = cursor.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// AppendMessage atomically appends a message and advances
// lastMessageAt. The sender must be a participant: the filter carries
// the sender id, so an absent conversation and a non-participant sender
// both surface as ErrNotFound. $push keeps concurrent sends from
// overwriting each other.
func (r *MongoConversationRepository) AppendMessage(ctx context.Context, id string, senderID uint, msg models.Message) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$set": bson.M{
			"last_message_at": msg.SentAt,
			"updated_at":      msg.SentAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID, "participant_ids": senderID}, update)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkMessagesRead stamps ReadAt on every unread message sent by the
// other participant. Same participant-or-not-found collapse as above.
func (r *MongoConversationRepository) MarkMessagesRead(ctx context.Context, id string, readerID uint, at time.Time) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	update := bson.M{
		"$set": bson.M{
			"messages.$[m].read_at": at,
			"updated_at":            at,
		},
	}
	updateOptions := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{
				"m.sender_id": bson.M{"$ne": readerID},
				"m.read_at":   bson.M{"$exists": false},
			},
		},
	})
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID, "participant_ids": readerID}, update, updateOptions)
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
