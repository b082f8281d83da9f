package repository

import (
	"context"

	"picstream/internal/cache"
	"picstream/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow edge operations.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followeeID uint) error
	Unfollow(ctx context.Context, followerID, followeeID uint) error
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	Followers(ctx context.Context, userID uint) ([]models.BasicInfo, error)
	Following(ctx context.Context, userID uint) ([]models.BasicInfo, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	DeleteAllForUser(ctx context.Context, userID uint) error
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Follow(ctx context.Context, followerID, followeeID uint) error {
	// ON CONFLICT DO NOTHING makes a repeated follow a no-op instead of a
	// duplicate key error, so concurrent taps converge on a single edge.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO follows (follower_id, followee_id, created_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (follower_id, followee_id) DO NOTHING`,
		followerID, followeeID,
	)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	cache.InvalidateFollowing(ctx, followerID)
	cache.InvalidateUser(ctx, followerID)
	cache.InvalidateUser(ctx, followeeID)
	return nil
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateFollowing(ctx, followerID)
	cache.InvalidateUser(ctx, followerID)
	cache.InvalidateUser(ctx, followeeID)
	return nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) Followers(ctx context.Context, userID uint) ([]models.BasicInfo, error) {
	var results []models.BasicInfo
	if err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.username, users.avatar").
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&results).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return results, nil
}

func (r *followRepository) Following(ctx context.Context, userID uint) ([]models.BasicInfo, error) {
	var results []models.BasicInfo
	if err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.username, users.avatar").
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&results).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return results, nil
}

// FollowingIDs returns the IDs a user follows. The result feeds the home feed
// query, so it is cached briefly.
func (r *followRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	key := cache.FollowingKey(userID)

	err := cache.Aside(ctx, key, &ids, cache.FollowingTTL, func() error {
		if err := r.db.WithContext(ctx).
			Model(&models.Follow{}).
			Where("follower_id = ?", userID).
			Pluck("followee_id", &ids).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteAllForUser removes every edge touching the user, both directions.
func (r *followRepository) DeleteAllForUser(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? OR followee_id = ?", userID, userID).
		Delete(&models.Follow{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateFollowing(ctx, userID)
	cache.InvalidateUser(ctx, userID)
	return nil
}
