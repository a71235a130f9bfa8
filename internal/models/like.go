package models

import "time"

// Like represents a like on a post. The composite unique index makes
// a racing double-like fail at the database rather than rely on the
// handler's existence check alone.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_post"`
	PostID    uint      `json:"post_id" gorm:"not null;uniqueIndex:idx_user_post"`
	CreatedAt time.Time `json:"created_at"`
}
