package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/linkuphq/backend/internal/models"
	"github.com/linkuphq/backend/internal/repositories"
)

func setupPosts(t *testing.T) (*PostHandler, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	h := NewPostHandler(
		repositories.NewPostgresPostRepository(db),
		repositories.NewPostgresUserRepository(db),
		repositories.NewPostgresLikeRepository(db),
		repositories.NewPostgresCommentRepository(db),
	)
	return h, db
}

func seedPost(t *testing.T, db *gorm.DB, author *models.User, content string, createdAt time.Time) *models.Post {
	t.Helper()

	post := &models.Post{AuthorID: author.ID, Content: content, CreatedAt: createdAt}
	require.NoError(t, db.Create(post).Error)
	return post
}

func decodePostView(t *testing.T, body []byte) models.PostView {
	t.Helper()

	var resp struct {
		Data models.PostView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Data
}

func TestCreatePost_ReturnsDecoratedView(t *testing.T) {
	h, db := setupPosts(t)
	e := newTestEcho()
	alice := seedUser(t, db, "alice@example.com", "Alice", "Anderson")

	c, rec := jsonContext(e, http.MethodPost, "/api/v1/posts", `{"content":"Shipped the new release"}`, alice)
	require.NoError(t, h.CreatePost(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	view := decodePostView(t, rec.Body.Bytes())
	assert.Equal(t, "Shipped the new release", view.Content)
	assert.Equal(t, "Alice", view.Author.FirstName)
	assert.Zero(t, view.LikesCount)
	assert.Zero(t, view.CommentsCount)
	assert.False(t, view.LikedByViewer)
}

func TestCreatePost_HTMLOnlyContentRejected(t *testing.T) {
	h, db := setupPosts(t)
	e := newTestEcho()
	alice := seedUser(t, db, "alice@example.com", "Alice", "Anderson")

	// Survives validation but is empty once the markup is stripped.
	c, _ := jsonContext(e, http.MethodPost, "/api/v1/posts", `{"content":"<p><br/></p>"}`, alice)
	httpErr := httpError(t, h.CreatePost(c))
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	assert.Equal(t, "Post content cannot be empty", httpErr.Message)
}

func TestGetPost_DecoratedWithCountsAndViewerLike(t *testing.T) {
	h, db := setupPosts(t)
	e := newTestEcho()
	alice := seedUser(t, db, "alice@example.com", "Alice", "Anderson")
	bob := seedUser(t, db, "bob@example.com", "Bob", "Baker")
	carol := seedUser(t, db, "carol@example.com", "Carol", "Chen")

	post := seedPost(t, db, bob, "Hello network", time.Now().UTC())
	require.NoError(t, db.Create(&models.Like{PostID: post.ID, UserID: alice.ID}).Error)
	require.NoError(t, db.Create(&models.Like{PostID: post.ID, UserID: carol.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{PostID: post.ID, AuthorID: carol.ID, Content: "Welcome"}).Error)

	c, rec := jsonContext(e, http.MethodGet, "/", "", alice)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(post.ID))
	require.NoError(t, h.GetPost(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	view := decodePostView(t, rec.Body.Bytes())
	assert.Equal(t, int64(2), view.LikesCount)
	assert.Equal(t, int64(1), view.CommentsCount)
	assert.True(t, view.LikedByViewer)
	assert.Equal(t, "Bob", view.Author.FirstName)
}

func TestGetPost_NotFound(t *testing.T) {
	h, db := setupPosts(t)
	e := newTestEcho()
	alice := seedUser(t, db, "alice@example.com", "Alice", "Anderson")

	c, _ := jsonContext(e, http.MethodGet, "/", "", alice)
	c.SetParamNames("id")
	c.SetParamValues("9999")
	httpErr := httpError(t, h.GetPost(c))
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
	assert.Equal(t, "Post not found", httpErr.Message)
}

func TestUpdatePost_ByAuthor(t *testing.T) {
	h, db := setupPosts(t)
	e := newTestEcho()
	alice := seedUser(t, db, "alice@example.com", "Alice", "Anderson")
	post := seedPost(t, db, alice, "First draft", time.Now().UTC())

	c, rec := jsonContext(e, http.MethodPut, "/", `{"content":"Final version"}`, alice)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(post.ID))
	require.NoError(t, h.UpdatePost(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var updated models.Post
	require.NoError(t, db.First(&updated, post.ID).Error)
	assert.Equal(t, "Final version", updated.Content)
}

func TestUpdatePost_NonAuthorSeesNotFound(t *testing.T) {
	h, db := setupPosts(t)
	e := newTestEcho()
	alice := seedUser(t, db, "alice@example.com", "Alice", "Anderson")
	bob := seedUser(t, db, "bob@example.com", "Bob", "Baker")
	post := seedPost(t, db, alice, "Mine", time.Now().UTC())

	c, _ := jsonContext(e, http.MethodPut, "/", `{"content":"Hijacked"}`, bob)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(post.ID))
	httpErr := httpError(t, h.UpdatePost(c))

	// Someone else's post is indistinguishable from a missing one.
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
	assert.Equal(t, "Post not found", httpErr.Message)

	var unchanged models.Post
	require.NoError(t, db.First(&unchanged, post.ID).Error)
	assert.Equal(t, "Mine", unchanged.Content)
}

func TestDeletePost_CascadesCommentsAndLikes(t *testing.T) {
	h, db := setupPosts(t)
	e := newTestEcho()
	alice := seedUser(t, db, "alice@example.com", "Alice", "Anderson")
	bob := seedUser(t, db, "bob@example.com", "Bob", "Baker")

	post := seedPost(t, db, alice, "Short lived", time.Now().UTC())
	require.NoError(t, db.Create(&models.Comment{PostID: post.ID, AuthorID: bob.ID, Content: "Nice"}).Error)
	require.NoError(t, db.Create(&models.Like{PostID: post.ID, UserID: bob.ID}).Error)

	c, rec := jsonContext(e, http.MethodDelete, "/", "", alice)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(post.ID))
	require.NoError(t, h.DeletePost(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var posts, comments, likes int64
	db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&posts)
	db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments)
	db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likes)
	assert.Zero(t, posts)
	assert.Zero(t, comments)
	assert.Zero(t, likes)
}

func TestDeletePost_NonAuthorSeesNotFound(t *testing.T) {
	h, db := setupPosts(t)
	e := newTestEcho()
	alice := seedUser(t, db, "alice@example.com", "Alice", "Anderson")
	bob := seedUser(t, db, "bob@example.com", "Bob", "Baker")
	post := seedPost(t, db, alice, "Keep out", time.Now().UTC())

	c, _ := jsonContext(e, http.MethodDelete, "/", "", bob)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(post.ID))
	httpErr := httpError(t, h.DeletePost(c))
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
	assert.Equal(t, "Post not found", httpErr.Message)
}

func TestListUserPosts_NewestFirst(t *testing.T) {
	h, db := setupPosts(t)
	e := newTestEcho()
	alice := seedUser(t, db, "alice@example.com", "Alice", "Anderson")
	bob := seedUser(t, db, "bob@example.com", "Bob", "Baker")

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	oldest := seedPost(t, db, alice, "one", base)
	middle := seedPost(t, db, alice, "two", base.Add(time.Hour))
	newest := seedPost(t, db, alice, "three", base.Add(2*time.Hour))
	// Another author's post never shows up.
	seedPost(t, db, bob, "other", base.Add(3*time.Hour))

	c, rec := jsonContext(e, http.MethodGet, "/", "", bob)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(alice.ID))
	require.NoError(t, h.ListUserPosts(c))

	var resp struct {
		Data []models.PostView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, newest.ID, resp.Data[0].ID)
	assert.Equal(t, middle.ID, resp.Data[1].ID)
	assert.Equal(t, oldest.ID, resp.Data[2].ID)
}

func TestListUserPosts_UnknownUser(t *testing.T) {
	h, db := setupPosts(t)
	e := newTestEcho()
	alice := seedUser(t, db, "alice@example.com", "Alice", "Anderson")

	c, _ := jsonContext(e, http.MethodGet, "/", "", alice)
	c.SetParamNames("id")
	c.SetParamValues("9999")
	httpErr := httpError(t, h.ListUserPosts(c))
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
	assert.Equal(t, "User not found", httpErr.Message)
}
