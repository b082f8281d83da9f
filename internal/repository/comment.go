package repository

import (
	"context"
	"errors"

	"picstream/internal/cache"
	"picstream/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	Delete(ctx context.Context, id uint) error
	DeleteAllByUser(ctx context.Context, userID uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment. When the comment carries a client ID and an
// identical retry already landed on the same post, the existing row is loaded
// into comment instead, so retries after a lost response do not duplicate.
// The key is scoped to the post, so the lookup must be too.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Create(comment).Error
	if err == nil {
		cache.InvalidatePost(ctx, comment.PostID)
		return nil
	}
	if comment.ClientID != "" && isUniqueConstraintError(err) {
		var existing models.Comment
		if findErr := r.db.WithContext(ctx).
			Preload("User").
			Where("post_id = ? AND client_id = ?", comment.PostID, comment.ClientID).
			First(&existing).Error; findErr == nil {
			*comment = existing
			return nil
		}
	}
	return models.NewInternalError(err)
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Select("id", "post_id").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", id)
		}
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

// DeleteAllByUser permanently removes every comment the user wrote, across
// all posts, in a single indexed statement.
func (r *commentRepository) DeleteAllByUser(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).
		Unscoped().
		Where("user_id = ?", userID).
		Delete(&models.Comment{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
