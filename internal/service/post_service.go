package service

import (
	"context"
	"io"
	"strings"
	"time"

	"picstream/internal/middleware"
	"picstream/internal/models"
	"picstream/internal/repository"
	"picstream/internal/storage"
	"picstream/internal/validation"
)

const (
	// FeedLimit caps the home feed at the newest posts across followed
	// creators plus the caller's own.
	FeedLimit = 50

	defaultPageSize = 20
	maxPageSize     = 50
)

type PostService struct {
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
	store      storage.ObjectStore
}

type CreatePostInput struct {
	CreatorID   uint
	Caption     string
	Image       io.Reader
	ImageSize   int64
	ContentType string
}

func NewPostService(postRepo repository.PostRepository, followRepo repository.FollowRepository, store storage.ObjectStore) *PostService {
	return &PostService{postRepo: postRepo, followRepo: followRepo, store: store}
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// CreatePost uploads the image first, then writes the post row. If the row
// write fails the uploaded blob is removed so storage does not accumulate
// orphans.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Image == nil || in.ImageSize <= 0 {
		return nil, models.NewValidationError("An image is required")
	}
	if !strings.HasPrefix(in.ContentType, "image/") {
		return nil, models.NewValidationError("Uploaded file must be an image")
	}
	if err := validation.ValidateCaption(in.Caption); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	key := storage.PostImageKey(in.CreatorID, time.Now())
	imageURL, err := s.store.Upload(ctx, key, in.Image, in.ImageSize, in.ContentType)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	post := &models.Post{
		CreatorID: in.CreatorID,
		ImageURL:  imageURL,
		Caption:   in.Caption,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			middleware.Logger.ErrorContext(ctx, "orphaned post image after failed create",
				"key", key, "error", delErr)
		}
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.CreatorID)
}

func (s *PostService) GetPost(ctx context.Context, postID, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID, currentUserID)
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	limit, offset = clampPage(limit, offset)
	return s.postRepo.GetByCreator(ctx, userID, limit, offset, currentUserID)
}

// Feed returns the newest posts from the users the caller follows, plus the
// caller's own posts, newest first.
func (s *PostService) Feed(ctx context.Context, userID uint) ([]*models.Post, error) {
	followingIDs, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	creatorIDs := append(followingIDs, userID)
	return s.postRepo.Feed(ctx, creatorIDs, FeedLimit, userID)
}

// Explore returns posts authored by everyone except the caller.
func (s *PostService) Explore(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	limit, offset = clampPage(limit, offset)
	return s.postRepo.Explore(ctx, userID, limit, offset)
}

func (s *PostService) LikePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return err
	}
	return s.postRepo.Like(ctx, userID, postID)
}

func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) error {
	return s.postRepo.Unlike(ctx, userID, postID)
}

func (s *PostService) SavePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return err
	}
	return s.postRepo.Save(ctx, userID, postID)
}

func (s *PostService) UnsavePost(ctx context.Context, userID, postID uint) error {
	return s.postRepo.Unsave(ctx, userID, postID)
}

func (s *PostService) SavedPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	limit, offset = clampPage(limit, offset)
	return s.postRepo.SavedPosts(ctx, userID, limit, offset)
}

// DeletePost removes a post the caller owns. The blob is cleaned up
// best-effort after the row is gone.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err != nil {
		return err
	}
	if post.CreatorID != userID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	if key, keyErr := s.store.KeyFromURL(post.ImageURL); keyErr != nil {
		middleware.Logger.WarnContext(ctx, "skipping blob cleanup for unrecognized image URL",
			"post_id", postID, "url", post.ImageURL, "error", keyErr)
	} else if delErr := s.store.Delete(ctx, key); delErr != nil {
		middleware.Logger.ErrorContext(ctx, "failed to delete post image",
			"post_id", postID, "key", key, "error", delErr)
	}
	return nil
}
