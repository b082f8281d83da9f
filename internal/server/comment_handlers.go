package server

import (
	"picstream/internal/models"
	"picstream/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(c.Context(), postID)
	if err != nil {
		return fail(c, err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"comments": comments,
	})
}

// CreateComment handles POST /api/posts/:id/comments. Clients may send a
// client_id so a retried request lands on the already-created comment instead
// of producing a duplicate.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Message  string `json:"message"`
		ClientID string `json:"client_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		UserID:   currentUserID(c),
		PostID:   postID,
		Message:  req.Message,
		ClientID: req.ClientID,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"comment": comment,
	})
}

// DeleteComment handles DELETE /api/posts/:id/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	if _, err := s.parseID(c, "id"); err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.DeleteComment(c.Context(), service.DeleteCommentInput{
		UserID:    currentUserID(c),
		CommentID: commentID,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"comment": comment,
	})
}
