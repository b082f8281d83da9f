package server

import (
	"picstream/internal/models"
	"picstream/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts. The body is multipart form data with an
// "image" file part and an optional "caption" field.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("An image file is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fail(c, models.NewInternalError(err))
	}
	defer file.Close()

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		CreatorID:   currentUserID(c),
		Caption:     c.FormValue("caption"),
		Image:       file,
		ImageSize:   fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"post":    post,
	})
}

// GetFeed handles GET /api/posts. The feed is the newest posts from followed
// creators plus the caller's own.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	posts, err := s.postService.Feed(c.Context(), currentUserID(c))
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

// GetExplore handles GET /api/posts/explore
func (s *Server) GetExplore(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	posts, err := s.postService.Explore(c.Context(), currentUserID(c), page.Limit, page.Offset)
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

// GetSavedPosts handles GET /api/posts/saved
func (s *Server) GetSavedPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	posts, err := s.postService.SavedPosts(c.Context(), currentUserID(c), page.Limit, page.Offset)
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

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), postID, currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"post":    post,
	})
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), currentUserID(c), postID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Post deleted",
	})
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.LikePost(c.Context(), currentUserID(c), postID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Post liked",
	})
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.UnlikePost(c.Context(), currentUserID(c), postID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Post unliked",
	})
}

// GetPostLikers handles GET /api/posts/:id/likes. Liker IDs come off the
// likes table and resolve to user info in one batched lookup.
func (s *Server) GetPostLikers(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.postService.GetPost(c.Context(), postID, 0); err != nil {
		return fail(c, err)
	}

	ids, err := s.postRepo.LikerIDs(c.Context(), postID)
	if err != nil {
		return fail(c, err)
	}
	users, err := s.userRepo.BatchBasicInfo(c.Context(), ids)
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

// SavePost handles POST /api/posts/:id/save
func (s *Server) SavePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.SavePost(c.Context(), currentUserID(c), postID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Post saved",
	})
}

// UnsavePost handles DELETE /api/posts/:id/save
func (s *Server) UnsavePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.UnsavePost(c.Context(), currentUserID(c), postID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Post unsaved",
	})
}
