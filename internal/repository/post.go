package repository

import (
	"context"
	"errors"

	"picstream/internal/cache"
	"picstream/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	GetByCreator(ctx context.Context, creatorID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	Feed(ctx context.Context, creatorIDs []uint, limit int, currentUserID uint) ([]*models.Post, error)
	Explore(ctx context.Context, excludeUserID uint, limit, offset int) ([]*models.Post, error)
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	Save(ctx context.Context, userID, postID uint) error
	Unsave(ctx context.Context, userID, postID uint) error
	SavedPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	LikerIDs(ctx context.Context, postID uint) ([]uint, error)
	ImageURLsByCreator(ctx context.Context, creatorID uint) ([]string, error)
	DeleteAllByCreator(ctx context.Context, creatorID uint) error
	DeleteAllLikesByUser(ctx context.Context, userID uint) error
	DeleteAllSavesByUser(ctx context.Context, userID uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked"+
			", EXISTS(SELECT 1 FROM saved_posts WHERE saved_posts.post_id = posts.id AND saved_posts.user_id = ?) as saved",
			currentUserID, currentUserID)
	}

	return db.Select(selectQuery + ", false as liked, false as saved")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post
	fetch := func() error {
		return r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
			Preload("Creator").
			First(&post, id).Error
	}

	var err error
	if currentUserID == 0 {
		// The anonymous view has no liked/saved flags, so it is the same for
		// every caller and safe to cache. Like, comment, and delete paths
		// invalidate the key.
		err = cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetByCreator(ctx context.Context, creatorID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Creator").
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Feed returns the newest posts from the given creators, newest first.
func (r *postRepository) Feed(ctx context.Context, creatorIDs []uint, limit int, currentUserID uint) ([]*models.Post, error) {
	if len(creatorIDs) == 0 {
		return nil, nil
	}
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Creator").
		Where("creator_id IN ?", creatorIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Explore returns posts by everyone except the given user. The exclusion
// happens in SQL so the requested page size is always honored.
func (r *postRepository) Explore(ctx context.Context, excludeUserID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), excludeUserID).
		Preload("Creator").
		Where("creator_id <> ?", excludeUserID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	// INSERT ... ON CONFLICT DO NOTHING keeps a double tap idempotent.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, post_id, created_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID,
	)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) Save(ctx context.Context, userID, postID uint) error {
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO saved_posts (user_id, post_id, created_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID,
	)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	return nil
}

func (r *postRepository) Unsave(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.SavedPost{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// LikerIDs returns the users who liked a post, most recent like first.
func (r *postRepository) LikerIDs(ctx context.Context, postID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// SavedPosts returns the user's saved posts, most recently saved first.
func (r *postRepository) SavedPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), userID).
		Preload("Creator").
		Joins("JOIN saved_posts ON saved_posts.post_id = posts.id").
		Where("saved_posts.user_id = ?", userID).
		Order("saved_posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ImageURLsByCreator lists every image URL referenced by the user's posts,
// including soft-deleted ones, so blob cleanup misses nothing.
func (r *postRepository) ImageURLsByCreator(ctx context.Context, creatorID uint) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&models.Post{}).
		Where("creator_id = ?", creatorID).
		Pluck("image_url", &urls).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return urls, nil
}

// DeleteAllByCreator permanently removes the user's posts. Used by account
// erasure, where soft deletion would defeat the point.
func (r *postRepository) DeleteAllByCreator(ctx context.Context, creatorID uint) error {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Unscoped().
		Model(&models.Post{}).
		Where("creator_id = ?", creatorID).
		Pluck("id", &ids).Error; err != nil {
		return models.NewInternalError(err)
	}
	if len(ids) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id IN ?", ids).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id IN ?", ids).Delete(&models.SavedPost{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("post_id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("creator_id = ?", creatorID).Delete(&models.Post{}).Error
	}); err != nil {
		return models.NewInternalError(err)
	}

	for _, id := range ids {
		cache.InvalidatePost(ctx, id)
	}
	return nil
}

func (r *postRepository) DeleteAllLikesByUser(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Like{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) DeleteAllSavesByUser(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.SavedPost{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
