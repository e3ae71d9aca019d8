package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/citizen-feedback-service/internal/api/dto"
	"github.com/spec-kit/citizen-feedback-service/internal/auth"
	"github.com/spec-kit/citizen-feedback-service/internal/service"
	apperrors "github.com/spec-kit/citizen-feedback-service/pkg/util"
)

// CommentsHandler manages the comment thread under a feedback.
type CommentsHandler struct {
	comments   *service.CommentService
	engagement *service.EngagementService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService, engagementService *service.EngagementService) *CommentsHandler {
	return &CommentsHandler{comments: commentService, engagement: engagementService}
}

// Create POST /feedbacks/:id/comments.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	comment, err := h.comments.Create(c.UserContext(), principal.User, service.CommentCreateInput{
		FeedbackID:  c.Params("id"),
		ParentID:    req.ParentID,
		Message:     req.Message,
		Attachments: req.Attachments,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment, principal.User)})
}

// List GET /feedbacks/:id/comments. Public, optional auth.
func (h *CommentsHandler) List(c *fiber.Ctx) error {
	comments, err := h.comments.ListByFeedback(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentResponses(comments, viewer(c))})
}

// Edit PATCH /comments/:id.
func (h *CommentsHandler) Edit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	var req dto.EditCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	comment, err := h.comments.Edit(c.UserContext(), principal.User, c.Params("id"), req.Message)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentResponse(comment, principal.User)})
}

// Delete DELETE /comments/:id.
func (h *CommentsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	if err := h.comments.Delete(c.UserContext(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// Like POST /comments/:id/like.
func (h *CommentsHandler) Like(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	comment, err := h.engagement.LikeComment(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentResponse(comment, principal.User)})
}

// Unlike DELETE /comments/:id/like.
func (h *CommentsHandler) Unlike(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	comment, err := h.engagement.UnlikeComment(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentResponse(comment, principal.User)})
}
