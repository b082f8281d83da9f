// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a published photo post in the Picstream application.
type Post struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CreatorID uint   `gorm:"not null;index" json:"creator_id"`
	Creator   User   `gorm:"foreignKey:CreatorID" json:"creator"`
	ImageURL  string `gorm:"not null" json:"image_url"`
	Caption   string `gorm:"type:text" json:"caption"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked bool `gorm:"->" json:"liked"`
	// Saved indicates whether the current requesting user bookmarked this post (computed)
	Saved     bool           `gorm:"->" json:"saved"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
