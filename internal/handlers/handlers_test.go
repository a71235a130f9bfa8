package handlers

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/linkuphq/backend/internal/models"
	"github.com/linkuphq/backend/internal/repositories"
	"github.com/linkuphq/backend/validators"
)

var testDBCounter int64

// newTestDB opens a fresh named in-memory SQLite database so tests
// cannot see each other's rows, and migrates the relational models.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Connection{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
	))
	return db
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validators.NewValidator()
	return e
}

func seedUser(t *testing.T, db *gorm.DB, email, firstName, lastName string) *models.User {
	t.Helper()

	user := &models.User{
		Email:     email,
		Password:  "$2a$10$notarealhashnotarealhashnotarealhashnotarealhash12345",
		FirstName: firstName,
		LastName:  lastName,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// jsonContext builds an echo context for a JSON request authenticated
// as the given user (nil for anonymous).
func jsonContext(e *echo.Echo, method, target, body string, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	var req = httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set("user", &models.JwtCustomClaims{
			UserID:    user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		})
	}
	return c, rec
}

// httpError unwraps the *echo.HTTPError a handler returned.
func httpError(t *testing.T, err error) *echo.HTTPError {
	t.Helper()

	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	return httpErr
}

// fakeNotificationRepo is an in-memory NotificationRepository. Entries
// are appended in call order and listed newest first, matching the
// Mongo implementation's created_at sort.
type fakeNotificationRepo struct {
	notifications []models.Notification
}

func (f *fakeNotificationRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotificationRepo) GetByRecipientID(_ context.Context, recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	var mine []models.Notification
	for i := len(f.notifications) - 1; i >= 0; i-- {
		if f.notifications[i].RecipientID == recipientID {
			mine = append(mine, f.notifications[i])
		}
	}

	total := int64(len(mine))
	start := (page - 1) * limit
	if start >= len(mine) {
		return []models.Notification{}, total, nil
	}
	end := start + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[start:end], total, nil
}

func (f *fakeNotificationRepo) GetUnreadCount(_ context.Context, recipientID uint) (int64, error) {
	var count int64
	for _, n := range f.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkAsRead(_ context.Context, id string, recipientID uint) error {
	for i, n := range f.notifications {
		if n.ID.Hex() == id && n.RecipientID == recipientID {
			f.notifications[i].IsRead = true
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeNotificationRepo) MarkAllAsRead(_ context.Context, recipientID uint) error {
	for i, n := range f.notifications {
		if n.RecipientID == recipientID {
			f.notifications[i].IsRead = true
		}
	}
	return nil
}

// forRecipient returns the stored notifications for one user, oldest
// first.
func (f *fakeNotificationRepo) forRecipient(recipientID uint) []models.Notification {
	var mine []models.Notification
	for _, n := range f.notifications {
		if n.RecipientID == recipientID {
			mine = append(mine, n)
		}
	}
	return mine
}

// fakeConversationRepo is an in-memory ConversationRepository with the
// same participant-scoping semantics as the Mongo implementation.
type fakeConversationRepo struct {
	conversations []*models.Conversation
}

func participantsMatch(ids []uint, a, b uint) bool {
	if len(ids) != 2 {
		return false
	}
	return (ids[0] == a && ids[1] == b) || (ids[0] == b && ids[1] == a)
}

func contains(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (f *fakeConversationRepo) GetOrCreateConversation(_ context.Context, userID, participantID uint, seed models.Message) (*models.Conversation, bool, error) {
	for _, conv := range f.conversations {
		if participantsMatch(conv.ParticipantIDs, userID, participantID) {
			return conv, false, nil
		}
	}

	conv := &models.Conversation{
		ID:             primitive.NewObjectID(),
		ParticipantIDs: []uint{userID, participantID},
		Messages:       []models.Message{seed},
		LastMessageAt:  seed.SentAt,
		CreatedAt:      seed.SentAt,
		UpdatedAt:      seed.SentAt,
	}
	f.conversations = append(f.conversations, conv)
	return conv, true, nil
}

func (f *fakeConversationRepo) GetConversationForUser(_ context.Context, id string, userID uint) (*models.Conversation, error) {
	for _, conv := range f.conversations {
		if conv.ID.Hex() == id && contains(conv.ParticipantIDs, userID) {
			return conv, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeConversationRepo) GetConversationsForUser(_ context.Context, userID uint) ([]models.Conversation, error) {
	var mine []models.Conversation
	for _, conv := range f.conversations {
		if contains(conv.ParticipantIDs, userID) {
			mine = append(mine, *conv)
		}
	}
	for i := 0; i < len(mine); i++ {
		for j := i + 1; j < len(mine); j++ {
			if mine[j].LastMessageAt.After(mine[i].LastMessageAt) {
				mine[i], mine[j] = mine[j], mine[i]
			}
		}
	}
	return mine, nil
}

func (f *fakeConversationRepo) AppendMessage(_ context.Context, id string, senderID uint, msg models.Message) error {
	for _, conv := range f.conversations {
		if conv.ID.Hex() == id && contains(conv.ParticipantIDs, senderID) {
			conv.Messages = append(conv.Messages, msg)
			conv.LastMessageAt = msg.SentAt
			conv.UpdatedAt = msg.SentAt
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeConversationRepo) MarkMessagesRead(_ context.Context, id string, readerID uint, at time.Time) error {
	for _, conv := range f.conversations {
		if conv.ID.Hex() == id && contains(conv.ParticipantIDs, readerID) {
			for i := range conv.Messages {
				if conv.Messages[i].SenderID != readerID && conv.Messages[i].ReadAt == nil {
					stamped := at
					conv.Messages[i].ReadAt = &stamped
				}
			}
			conv.UpdatedAt = at
			return nil
		}
	}
	return repositories.ErrNotFound
}
