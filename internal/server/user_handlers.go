package server

import (
	"picstream/internal/models"
	"picstream/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Bio      string `json:"bio"`
		Avatar   string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:   currentUserID(c),
		Username: req.Username,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// UpdateMyEmail handles PUT /api/users/me/email
func (s *Server) UpdateMyEmail(c *fiber.Ctx) error {
	var req struct {
		Email           string `json:"email"`
		CurrentPassword string `json:"current_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateEmail(c.Context(), service.UpdateEmailInput{
		UserID:          currentUserID(c),
		NewEmail:        req.Email,
		CurrentPassword: req.CurrentPassword,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// UpdateMyPassword handles PUT /api/users/me/password
func (s *Server) UpdateMyPassword(c *fiber.Ctx) error {
	var req struct {
		Password        string `json:"password"`
		CurrentPassword string `json:"current_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.userService.UpdatePassword(c.Context(), service.UpdatePasswordInput{
		UserID:          currentUserID(c),
		NewPassword:     req.Password,
		CurrentPassword: req.CurrentPassword,
	}); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password updated",
	})
}

// DeleteMyAccount handles DELETE /api/users/me/account. The cascade removes
// the caller's content first and only drops the account row once every
// content step succeeded, so a partial failure stays retryable.
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"current_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	jti, exp := currentTokenInfo(c)
	result, err := s.cascadeService.DeleteAccount(c.Context(), service.DeleteAccountInput{
		UserID:          currentUserID(c),
		CurrentPassword: req.CurrentPassword,
		TokenJTI:        jti,
		TokenExpiry:     exp,
	})
	if err != nil {
		return fail(c, err)
	}

	if !result.Complete {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Account deletion incomplete, please retry",
			"result":  result,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Account deleted",
		"result":  result,
	})
}

// SearchUsers handles GET /api/users/search?q=prefix
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users, err := s.userService.SearchUsers(c.Context(), c.Query("q"), c.QueryInt("limit", 0))
	if err != nil {
		return fail(c, err)
	}
	if users == nil {
		users = []models.BasicInfo{}
	}
	return c.JSON(fiber.Map{
		"success": true,
		"users":   users,
	})
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.Context(), userID)
	if err != nil {
		return fail(c, err)
	}

	following, err := s.userService.IsFollowing(c.Context(), currentUserID(c), userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"user":      user,
		"following": following,
	})
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	posts, err := s.postService.GetUserPosts(c.Context(), userID, page.Limit, page.Offset, currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return c.JSON(fiber.Map{
		"success": true,
		"posts":   posts,
	})
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	followers, err := s.userService.GetFollowers(c.Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	if followers == nil {
		followers = []models.BasicInfo{}
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"followers": followers,
	})
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	following, err := s.userService.GetFollowing(c.Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	if following == nil {
		following = []models.BasicInfo{}
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"following": following,
	})
}

// FollowUser handles POST /api/users/:id/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	followeeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.FollowUser(c.Context(), currentUserID(c), followeeID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Followed",
	})
}

// UnfollowUser handles DELETE /api/users/:id/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	followeeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.UnfollowUser(c.Context(), currentUserID(c), followeeID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Unfollowed",
	})
}
