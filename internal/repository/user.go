// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"picstream/internal/cache"
	"picstream/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	SearchByPrefix(ctx context.Context, prefix string, limit int) ([]models.BasicInfo, error)
	BatchBasicInfo(ctx context.Context, ids []uint) ([]models.BasicInfo, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// applyUserCounts adds subqueries so follower and following totals arrive in
// the same query as the profile row.
func (r *userRepository) applyUserCounts(db *gorm.DB) *gorm.DB {
	return db.Select("users.*, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.followee_id = users.id) as followers_count, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id) as following_count")
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.applyUserCounts(r.db.WithContext(ctx)).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Username or email already taken")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

// Delete removes the user row permanently. Account erasure must not leave a
// soft-deleted row holding the email and username hostage.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Unscoped().Delete(&models.User{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]models.BasicInfo, error) {
	var results []models.BasicInfo
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id, username, avatar").
		Where("username LIKE ?", prefix+"%").
		Order("username").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return results, nil
}

// BatchBasicInfo resolves many user IDs to their list projections in one
// round trip. Duplicate IDs collapse in the IN clause.
func (r *userRepository) BatchBasicInfo(ctx context.Context, ids []uint) ([]models.BasicInfo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	var results []models.BasicInfo
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id, username, avatar").
		Where("id IN ?", unique).
		Find(&results).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return results, nil
}
