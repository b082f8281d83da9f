package models

import (
	"time"
)

// Follow is a directed edge in the follow graph: FollowerID follows
// FolloweeID. A single row carries both sides of the relationship, so
// "a.following contains b" and "b.followers contains a" cannot drift apart —
// there is no paired write to leave half-applied.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_edge;index" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follow_edge;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`

	// Relationships
	Follower User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Followee User `gorm:"foreignKey:FolloweeID" json:"followee,omitempty"`
}
