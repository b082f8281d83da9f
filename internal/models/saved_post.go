package models

import (
	"time"
)

// SavedPost records that a user bookmarked a post.
// The (UserID, PostID) pair is unique, giving the saved set its membership
// semantics.
type SavedPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_saved_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_saved_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Post Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}
