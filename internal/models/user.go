// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Bio      string `json:"bio,omitempty"`
	Avatar   string `json:"avatar,omitempty"`

	// FollowersCount and FollowingCount are not persisted; computed at query time
	FollowersCount int `gorm:"->" json:"followers_count"`
	FollowingCount int `gorm:"->" json:"following_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Posts []Post `gorm:"foreignKey:CreatorID" json:"posts,omitempty"`
}

// BasicInfo is the projection of a user embedded in lists (followers,
// following, search results).
type BasicInfo struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// Basic returns the list projection of the user.
func (u *User) Basic() BasicInfo {
	return BasicInfo{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
	}
}
