package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/citizen-feedback-service/internal/api/dto"
	"github.com/spec-kit/citizen-feedback-service/internal/auth"
	"github.com/spec-kit/citizen-feedback-service/internal/domain"
	"github.com/spec-kit/citizen-feedback-service/internal/service"
	apperrors "github.com/spec-kit/citizen-feedback-service/pkg/util"
)

// ResponsesHandler manages official staff responses.
type ResponsesHandler struct {
	responses  *service.ResponseService
	engagement *service.EngagementService
}

// NewResponsesHandler constructs handler.
func NewResponsesHandler(responseService *service.ResponseService, engagementService *service.EngagementService) *ResponsesHandler {
	return &ResponsesHandler{responses: responseService, engagement: engagementService}
}

// Create POST /feedbacks/:id/responses. Admin only, enforced at the route.
func (h *ResponsesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	var req dto.CreateResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	var statusUpdate *domain.FeedbackStatus
	if req.StatusUpdate != nil {
		status := domain.FeedbackStatus(*req.StatusUpdate)
		statusUpdate = &status
	}
	response, err := h.responses.Create(c.UserContext(), principal.User, service.ResponseCreateInput{
		FeedbackID:   c.Params("id"),
		Message:      req.Message,
		StatusUpdate: statusUpdate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": officialResponse(response, principal.User)})
}

// List GET /feedbacks/:id/responses. Public, optional auth.
func (h *ResponsesHandler) List(c *fiber.Ctx) error {
	responses, err := h.responses.ListByFeedback(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": officialResponses(responses, viewer(c))})
}

// Update PATCH /responses/:id.
func (h *ResponsesHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	var req dto.UpdateResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	response, err := h.responses.Update(c.UserContext(), principal.User, c.Params("id"), req.Message)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": officialResponse(response, principal.User)})
}

// Delete DELETE /responses/:id.
func (h *ResponsesHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	if err := h.responses.Delete(c.UserContext(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// Like POST /responses/:id/like.
func (h *ResponsesHandler) Like(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	response, err := h.engagement.LikeResponse(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": officialResponse(response, principal.User)})
}

// Unlike DELETE /responses/:id/like.
func (h *ResponsesHandler) Unlike(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	response, err := h.engagement.UnlikeResponse(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": officialResponse(response, principal.User)})
}
