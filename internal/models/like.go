package models

import (
	"time"
)

// Like represents a user's like on a post.
// The combination of UserID and PostID must be unique, which is what gives
// likes their set semantics: liking twice is a no-op at the schema level.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Post Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}
