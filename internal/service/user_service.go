// Package service contains the application's business logic.
package service

import (
	"context"
	"strings"

	"picstream/internal/models"
	"picstream/internal/repository"
	"picstream/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

type UpdateProfileInput struct {
	UserID   uint
	Username string
	Bio      string
	Avatar   string
}

type UpdateEmailInput struct {
	UserID          uint
	NewEmail        string
	CurrentPassword string
}

type UpdatePasswordInput struct {
	UserID          uint
	NewPassword     string
	CurrentPassword string
}

func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{userRepo: userRepo, followRepo: followRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// SearchUsers finds users whose username starts with the given prefix.
func (s *UserService) SearchUsers(ctx context.Context, prefix string, limit int) ([]models.BasicInfo, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	return s.userRepo.SearchByPrefix(ctx, prefix, limit)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500

	if in.Username != "" {
		if err := validation.ValidateUsername(in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = in.Username
	}
	if in.Bio != "" {
		if len(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = in.Bio
	}
	if in.Avatar != "" {
		user.Avatar = in.Avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// reauthenticate verifies the caller's current password. Sensitive operations
// require it even when the JWT is valid.
func reauthenticate(user *models.User, password string) error {
	if password == "" {
		return models.NewReauthRequiredError("Current password is required")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.NewReauthRequiredError("Current password is incorrect")
	}
	return nil
}

func (s *UserService) UpdateEmail(ctx context.Context, in UpdateEmailInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := reauthenticate(user, in.CurrentPassword); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(in.NewEmail); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	user.Email = in.NewEmail
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, in UpdatePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}
	if err := reauthenticate(user, in.CurrentPassword); err != nil {
		return err
	}
	if err := validation.ValidatePassword(in.NewPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hashed)
	return s.userRepo.Update(ctx, user)
}

func (s *UserService) FollowUser(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return models.NewValidationError("You cannot follow yourself")
	}
	// Verify the followee exists so a stale profile screen gets a clean 404.
	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		return err
	}
	return s.followRepo.Follow(ctx, followerID, followeeID)
}

func (s *UserService) UnfollowUser(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return models.NewValidationError("You cannot unfollow yourself")
	}
	return s.followRepo.Unfollow(ctx, followerID, followeeID)
}

func (s *UserService) GetFollowers(ctx context.Context, userID uint) ([]models.BasicInfo, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Followers(ctx, userID)
}

func (s *UserService) GetFollowing(ctx context.Context, userID uint) ([]models.BasicInfo, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Following(ctx, userID)
}

func (s *UserService) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, followeeID)
}
