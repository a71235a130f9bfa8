package models

import "time"

// Post represents a piece of content published by a user.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AuthorID  uint      `json:"author_id" gorm:"index;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=3000"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,url"`
}

// UpdatePostRequest carries a partial post update. Pointer fields
// distinguish "leave unchanged" from "set to empty".
type UpdatePostRequest struct {
	Content  *string `json:"content,omitempty" validate:"omitempty,min=1,max=3000"`
	ImageURL *string `json:"image_url,omitempty" validate:"omitempty,url"`
}

// PostView decorates a post with its author and aggregate counters for
// feed and detail responses.
type PostView struct {
	Post
	Author        PublicProfile `json:"author"`
	LikesCount    int64         `json:"likes_count"`
	CommentsCount int64         `json:"comments_count"`
	LikedByViewer bool          `json:"liked_by_viewer"`
}
