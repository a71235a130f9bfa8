package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/linkuphq/backend/internal/models"
	"github.com/linkuphq/backend/internal/repositories"
)

type connectionFixture struct {
	handler *ConnectionHandler
	db      *gorm.DB
	notifs  *fakeNotificationRepo
	alice   *models.User
	bob     *models.User
	carol   *models.User
}

func setupConnections(t *testing.T) *connectionFixture {
	t.Helper()

	db := newTestDB(t)
	notifs := &fakeNotificationRepo{}
	h := NewConnectionHandler(
		repositories.NewPostgresConnectionRepository(db),
		repositories.NewPostgresUserRepository(db),
		notifs,
	)
	return &connectionFixture{
		handler: h,
		db:      db,
		notifs:  notifs,
		alice:   seedUser(t, db, "alice@example.com", "Alice", "Anderson"),
		bob:     seedUser(t, db, "bob@example.com", "Bob", "Baker"),
		carol:   seedUser(t, db, "carol@example.com", "Carol", "Chen"),
	}
}

func (f *connectionFixture) pendingBetween(t *testing.T, requester, addressee *models.User) models.Connection {
	t.Helper()

	var conn models.Connection
	require.NoError(t, f.db.Where("requester_id = ? AND addressee_id = ?", requester.ID, addressee.ID).First(&conn).Error)
	return conn
}

func TestSendRequest_CreatesPending(t *testing.T) {
	f := setupConnections(t)
	e := newTestEcho()

	body := fmt.Sprintf(`{"addressee_id":%d}`, f.bob.ID)
	c, rec := jsonContext(e, http.MethodPost, "/api/v1/connections", body, f.alice)
	require.NoError(t, f.handler.SendRequest(c))

	assert.Equal(t, http.StatusCreated, rec.Code)

	conn := f.pendingBetween(t, f.alice, f.bob)
	assert.Equal(t, models.ConnectionStatusPending, conn.Status)

	// The addressee is notified.
	notifs := f.notifs.forRecipient(f.bob.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationConnectionRequest, notifs[0].Type)
	assert.Contains(t, notifs[0].Message, "Alice")
}

func TestSendRequest_ToSelf(t *testing.T) {
	f := setupConnections(t)
	e := newTestEcho()

	body := fmt.Sprintf(`{"addressee_id":%d}`, f.alice.ID)
	c, _ := jsonContext(e, http.MethodPost, "/api/v1/connections", body, f.alice)
	httpErr := httpError(t, f.handler.SendRequest(c))
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestSendRequest_UnknownAddressee(t *testing.T) {
	f := setupConnections(t)
	e := newTestEcho()

	c, _ := jsonContext(e, http.MethodPost, "/api/v1/connections", `{"addressee_id":9999}`, f.alice)
	httpErr := httpError(t, f.handler.SendRequest(c))
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
	assert.Equal(t, "User not found", httpErr.Message)
}

func TestSendRequest_DuplicateBothDirections(t *testing.T) {
	f := setupConnections(t)
	e := newTestEcho()

	body := fmt.Sprintf(`{"addressee_id":%d}`, f.bob.ID)
	c, _ := jsonContext(e, http.MethodPost, "/api/v1/connections", body, f.alice)
	require.NoError(t, f.handler.SendRequest(c))

	// Same direction again.
	c, _ = jsonContext(e, http.MethodPost, "/api/v1/connections", body, f.alice)
	httpErr := httpError(t, f.handler.SendRequest(c))
	assert.Equal(t, http.StatusConflict, httpErr.Code)
	assert.Equal(t, "Connection request already pending", httpErr.Message)

	// Reverse direction while the first is still pending.
	reverse := fmt.Sprintf(`{"addressee_id":%d}`, f.alice.ID)
	c, _ = jsonContext(e, http.MethodPost, "/api/v1/connections", reverse, f.bob)
	httpErr = httpError(t, f.handler.SendRequest(c))
	assert.Equal(t, http.StatusConflict, httpErr.Code)
	assert.Equal(t, "Connection request already pending", httpErr.Message)
}

func TestSendRequest_AlreadyConnected(t *testing.T) {
	f := setupConnections(t)
	e := newTestEcho()

	require.NoError(t, f.db.Create(&models.Connection{
		RequesterID: f.alice.ID,
		AddresseeID: f.bob.ID,
		Status:      models.ConnectionStatusAccepted,
	}).Error)

	body := fmt.Sprintf(`{"addressee_id":%d}`, f.alice.ID)
	c, _ := jsonContext(e, http.MethodPost, "/api/v1/connections", body, f.bob)
	httpErr := httpError(t, f.handler.SendRequest(c))
	assert.Equal(t, http.StatusConflict, httpErr.Code)
	assert.Equal(t, "Users are already connected", httpErr.Message)
}

func TestSendRequest_RejectionIsTerminal(t *testing.T) {
	f := setupConnections(t)
	e := newTestEcho()

	require.NoError(t, f.db.Create(&models.Connection{
		RequesterID: f.alice.ID,
		AddresseeID: f.bob.ID,
		Status:      models.ConnectionStatusRejected,
	}).Error)

	// Neither party can open a new request while the rejected row exists.
	for _, attempt := range []struct {
		from *models.User
		to   *models.User
	}{
		{f.alice, f.bob},
		{f.bob, f.alice},
	} {
		body := fmt.Sprintf(`{"addressee_id":%d}`, attempt.to.ID)
		c, _ := jsonContext(e, http.MethodPost, "/api/v1/connections", body, attempt.from)
		httpErr := httpError(t, f.handler.SendRequest(c))
		assert.Equal(t, http.StatusConflict, httpErr.Code)
		assert.Equal(t, "Connection request was rejected", httpErr.Message)
	}
}

func TestAcceptRequest_ByAddressee(t *testing.T) {
	f := setupConnections(t)
	e := newTestEcho()

	conn := models.Connection{RequesterID: f.alice.ID, AddresseeID: f.bob.ID, Status: models.ConnectionStatusPending}
	require.NoError(t, f.db.Create(&conn).Error)

	c, rec := jsonContext(e, http.MethodPut, "/", "", f.bob)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(conn.ID))
	require.NoError(t, f.handler.AcceptRequest(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var updated models.Connection
	require.NoError(t, f.db.First(&updated, conn.ID).Error)
	assert.Equal(t, models.ConnectionStatusAccepted, updated.Status)

	// The requester is told their request was accepted.
	notifs := f.notifs.forRecipient(f.alice.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationConnectionAccepted, notifs[0].Type)
}

func TestAcceptRequest_ByRequesterForbidden(t *testing.T) {
	f := setupConnections(t)
	e := newTestEcho()

	conn := models.Connection{RequesterID: f.alice.ID, AddresseeID: f.bob.ID, Status: models.ConnectionStatusPending}
	require.NoError(t, f.db.Create(&conn).Error)

	c, _ := jsonContext(e, http.MethodPut, "/", "", f.alice)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(conn.ID))
	httpErr := httpError(t, f.handler.AcceptRequest(c))
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestAcceptRequest_NotFound(t *testing.T) {
	f := setupConnections(t)
	e := newTestEcho()

	c, _ := jsonContext(e, http.MethodPut, "/", "", f.bob)
	c.SetParamNames("id")
	c.SetParamValues("424242")
	httpErr := httpError(t, f.handler.AcceptRequest(c))
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestAcceptRequest_NoLongerPending(t *testing.T) {
	f := setupConnections(t)
	e := newTestEcho()

	conn := models.Connection{RequesterID: f.alice.ID, AddresseeID: f.bob.ID, Status: models.ConnectionStatusAccepted}
	require.NoError(t, f.db.Create(&conn).Error)

	c, _ := jsonContext(e, http.MethodPut, "/", "", f.bob)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(conn.ID))
	httpErr := httpError(t, f.handler.AcceptRequest(c))
	assert.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestRejectRequest_ThenAcceptConflicts(t *testing.T) {
	f := setupConnections(t)
	e := newTestEcho()

	conn := models.Connection{RequesterID: f.alice.ID, AddresseeID: f.bob.ID, Status: models.ConnectionStatusPending}
	require.NoError(t, f.db.Create(&conn).Error)

	c, rec := jsonContext(e, http.MethodPut, "/", "", f.bob)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(conn.ID))
	require.NoError(t, f.handler.RejectRequest(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Rejection does not notify anyone.
	assert.Empty(t, f.notifs.forRecipient(f.alice.ID))

	// The decision is final.
	c, _ = jsonContext(e, http.MethodPut, "/", "", f.bob)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(conn.ID))
	httpErr := httpError(t, f.handler.AcceptRequest(c))
	assert.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestListConnections_ReturnsPeerProfile(t *testing.T) {
	f := setupConnections(t)
	e := newTestEcho()

	require.NoError(t, f.db.Create(&models.Connection{
		RequesterID: f.alice.ID, AddresseeID: f.bob.ID, Status: models.ConnectionStatusAccepted,
	}).Error)
	require.NoError(t, f.db.Create(&models.Connection{
		RequesterID: f.carol.ID, AddresseeID: f.alice.ID, Status: models.ConnectionStatusAccepted,
	}).Error)
	// Pending rows never show up in the accepted list.
	require.NoError(t, f.db.Create(&models.Connection{
		RequesterID: f.bob.ID, AddresseeID: f.carol.ID, Status: models.ConnectionStatusPending,
	}).Error)

	c, rec := jsonContext(e, http.MethodGet, "/api/v1/connections", "", f.alice)
	require.NoError(t, f.handler.ListConnections(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.ConnectionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)

	// Whichever side Alice was on, the peer is the other user.
	peers := map[uint]bool{}
	for _, view := range resp.Data {
		peers[view.Peer.ID] = true
		assert.NotEqual(t, f.alice.ID, view.Peer.ID)
	}
	assert.True(t, peers[f.bob.ID])
	assert.True(t, peers[f.carol.ID])
}

func TestListPendingReceived_OnlyIncoming(t *testing.T) {
	f := setupConnections(t)
	e := newTestEcho()

	// Incoming pending for Alice.
	require.NoError(t, f.db.Create(&models.Connection{
		RequesterID: f.bob.ID, AddresseeID: f.alice.ID, Status: models.ConnectionStatusPending,
	}).Error)
	// Outgoing pending from Alice must not appear.
	require.NoError(t, f.db.Create(&models.Connection{
		RequesterID: f.alice.ID, AddresseeID: f.carol.ID, Status: models.ConnectionStatusPending,
	}).Error)

	c, rec := jsonContext(e, http.MethodGet, "/api/v1/connections/pending", "", f.alice)
	require.NoError(t, f.handler.ListPendingReceived(c))

	var resp struct {
		Data []models.ConnectionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, f.bob.ID, resp.Data[0].Peer.ID)
}

func TestRemoveConnection_EitherPartyAnyStatus(t *testing.T) {
	f := setupConnections(t)
	e := newTestEcho()

	// Requester cancels their own pending request.
	conn := models.Connection{RequesterID: f.alice.ID, AddresseeID: f.bob.ID, Status: models.ConnectionStatusPending}
	require.NoError(t, f.db.Create(&conn).Error)

	c, rec := jsonContext(e, http.MethodDelete, "/", "", f.alice)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(conn.ID))
	require.NoError(t, f.handler.RemoveConnection(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var count int64
	f.db.Model(&models.Connection{}).Where("id = ?", conn.ID).Count(&count)
	assert.Zero(t, count)

	// With the row gone the pair can start over.
	body := fmt.Sprintf(`{"addressee_id":%d}`, f.alice.ID)
	c, rec = jsonContext(e, http.MethodPost, "/api/v1/connections", body, f.bob)
	require.NoError(t, f.handler.SendRequest(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRemoveConnection_StrangerSeesNotFound(t *testing.T) {
	f := setupConnections(t)
	e := newTestEcho()

	conn := models.Connection{RequesterID: f.alice.ID, AddresseeID: f.bob.ID, Status: models.ConnectionStatusAccepted}
	require.NoError(t, f.db.Create(&conn).Error)

	c, _ := jsonContext(e, http.MethodDelete, "/", "", f.carol)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(conn.ID))
	httpErr := httpError(t, f.handler.RemoveConnection(c))
	assert.Equal(t, http.StatusNotFound, httpErr.Code)

	// Missing rows get the very same response.
	c, _ = jsonContext(e, http.MethodDelete, "/", "", f.carol)
	c.SetParamNames("id")
	c.SetParamValues("424242")
	missingErr := httpError(t, f.handler.RemoveConnection(c))
	assert.Equal(t, httpErr.Code, missingErr.Code)
	assert.Equal(t, httpErr.Message, missingErr.Message)
}
