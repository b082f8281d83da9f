// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post.
//
// ClientID is a caller-supplied idempotency key scoped to one post: retrying
// an add with the same ClientID on the same post returns the existing comment
// instead of appending a duplicate, while the same ClientID on another post is
// an ordinary new comment. Soft-deleted rows are excluded from the index so a
// key becomes reusable once its comment is removed. Ordering uses the
// server-assigned CreatedAt, never a client clock.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ClientID  string         `gorm:"size:64;uniqueIndex:idx_comment_post_client,priority:2,where:client_id <> '' AND deleted_at IS NULL" json:"client_id,omitempty"`
	Message   string         `gorm:"not null" json:"message"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	PostID    uint           `gorm:"not null;index;uniqueIndex:idx_comment_post_client,priority:1" json:"post_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
