package service

import (
	"context"

	"picstream/internal/models"
	"picstream/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	UserID   uint
	PostID   uint
	Message  string
	ClientID string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID, 0); err != nil {
		return nil, err
	}
	const maxCommentLen = 2200

	if in.Message == "" {
		return nil, models.NewValidationError("Message is required")
	}
	if len(in.Message) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2200 characters)")
	}

	comment := &models.Comment{
		Message:  in.Message,
		ClientID: in.ClientID,
		UserID:   in.UserID,
		PostID:   in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

// DeleteComment allows removal by the comment's author or by the owner of the
// post the comment sits on.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	if comment.UserID != in.UserID {
		post, err := s.postRepo.GetByID(ctx, comment.PostID, 0)
		if err != nil {
			return nil, err
		}
		if post.CreatorID != in.UserID {
			return nil, models.NewUnauthorizedError("You can only delete your own comments or comments on your posts")
		}
	}

	if err := s.commentRepo.Delete(ctx, in.CommentID); err != nil {
		return nil, err
	}

	return comment, nil
}
