package service

import (
	"context"
	"time"

	"picstream/internal/cache"
	"picstream/internal/middleware"
	"picstream/internal/observability"
	"picstream/internal/repository"
	"picstream/internal/storage"

	"go.opentelemetry.io/otel/attribute"
)

// Cascade step names, in execution order. Content is removed before the
// account row so a failure never strands a deleted login with live data.
const (
	StepComments   = "comments"
	StepLikes      = "likes"
	StepSaves      = "saves"
	StepFollows    = "follows"
	StepPostImages = "post_images"
	StepPosts      = "posts"
	StepAccount    = "account"
)

// StepResult records the outcome of one cascade step.
type StepResult struct {
	Step  string `json:"step"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// CascadeResult is the full account deletion report. Complete is true only
// when every step, including the account row itself, succeeded.
type CascadeResult struct {
	Steps    []StepResult `json:"steps"`
	Complete bool         `json:"complete"`
}

type CascadeService struct {
	userRepo    repository.UserRepository
	followRepo  repository.FollowRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	store       storage.ObjectStore
}

type DeleteAccountInput struct {
	UserID          uint
	CurrentPassword string
	// TokenJTI and TokenExpiry identify the session token to revoke once the
	// account row is gone.
	TokenJTI    string
	TokenExpiry time.Time
}

func NewCascadeService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	store storage.ObjectStore,
) *CascadeService {
	return &CascadeService{
		userRepo:    userRepo,
		followRepo:  followRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		store:       store,
	}
}

// DeleteAccount removes everything the user owns, then the account itself.
//
// Reauthentication failures abort before anything is touched. After that,
// content steps run in order and keep going past individual failures so one
// broken step does not block the rest of the cleanup. The account row is only
// deleted when every content step succeeded; otherwise the user can log in
// again and retry, and the report says exactly what is left.
func (s *CascadeService) DeleteAccount(ctx context.Context, in DeleteAccountInput) (*CascadeResult, error) {
	span, ctx := observability.NewSpan(ctx, "cascade.delete_account")
	defer span.End()
	span.AddAttributes(attribute.Int("user.id", int(in.UserID)))

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if err := reauthenticate(user, in.CurrentPassword); err != nil {
		span.SetError(err)
		return nil, err
	}

	result := &CascadeResult{}
	run := func(step string, fn func() error) {
		err := fn()
		if err != nil {
			middleware.CascadeStepFailures.WithLabelValues(step).Inc()
			middleware.Logger.ErrorContext(ctx, "account deletion step failed",
				"step", step, "user_id", in.UserID, "error", err)
			span.SetError(err)
			result.Steps = append(result.Steps, StepResult{Step: step, Error: err.Error()})
			return
		}
		result.Steps = append(result.Steps, StepResult{Step: step, OK: true})
	}

	run(StepComments, func() error { return s.commentRepo.DeleteAllByUser(ctx, in.UserID) })
	run(StepLikes, func() error { return s.postRepo.DeleteAllLikesByUser(ctx, in.UserID) })
	run(StepSaves, func() error { return s.postRepo.DeleteAllSavesByUser(ctx, in.UserID) })
	run(StepFollows, func() error { return s.followRepo.DeleteAllForUser(ctx, in.UserID) })
	run(StepPostImages, func() error { return s.deletePostImages(ctx, in.UserID) })
	run(StepPosts, func() error { return s.postRepo.DeleteAllByCreator(ctx, in.UserID) })

	for _, step := range result.Steps {
		if !step.OK {
			return result, nil
		}
	}

	run(StepAccount, func() error { return s.userRepo.Delete(ctx, in.UserID) })
	last := result.Steps[len(result.Steps)-1]
	if !last.OK {
		return result, nil
	}

	// Revoke the session last. Even if this fails the account is gone and
	// the token will stop resolving to a user.
	if err := cache.DenyToken(ctx, in.TokenJTI, in.TokenExpiry); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to revoke token after account deletion",
			"user_id", in.UserID, "error", err)
	}

	result.Complete = true
	return result, nil
}

// deletePostImages removes every blob referenced by the user's posts. A URL
// the store does not recognize is logged and skipped rather than failing the
// whole step.
func (s *CascadeService) deletePostImages(ctx context.Context, userID uint) error {
	urls, err := s.postRepo.ImageURLsByCreator(ctx, userID)
	if err != nil {
		return err
	}
	var lastErr error
	for _, rawURL := range urls {
		key, err := s.store.KeyFromURL(rawURL)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "skipping unrecognized image URL during account deletion",
				"user_id", userID, "url", rawURL, "error", err)
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			lastErr = err
			middleware.Logger.ErrorContext(ctx, "failed to delete post image during account deletion",
				"user_id", userID, "key", key, "error", err)
		}
	}
	return lastErr
}
