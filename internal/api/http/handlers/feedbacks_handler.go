package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/citizen-feedback-service/internal/api/dto"
	"github.com/spec-kit/citizen-feedback-service/internal/auth"
	"github.com/spec-kit/citizen-feedback-service/internal/domain"
	"github.com/spec-kit/citizen-feedback-service/internal/service"
	apperrors "github.com/spec-kit/citizen-feedback-service/pkg/util"
)

// FeedbacksHandler manages feedback endpoints, including the
// like/follow engagement routes.
type FeedbacksHandler struct {
	feedbacks  *service.FeedbackService
	engagement *service.EngagementService
}

// NewFeedbacksHandler constructs handler.
func NewFeedbacksHandler(feedbackService *service.FeedbackService, engagementService *service.EngagementService) *FeedbacksHandler {
	return &FeedbacksHandler{feedbacks: feedbackService, engagement: engagementService}
}

// Create POST /feedbacks.
func (h *FeedbacksHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	var req dto.CreateFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	feedback, err := h.feedbacks.Create(c.UserContext(), principal.User, service.FeedbackCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        domain.FeedbackType(req.Type),
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Attachments: req.Attachments,
		ChatEnabled: req.ChatEnabled,
		IsAnonymous: req.IsAnonymous,
		Location:    locationFromRequest(req.Location),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": feedbackResponse(feedback, principal.User)})
}

// List GET /feedbacks. Public board, optional auth for viewer fields.
func (h *FeedbacksHandler) List(c *fiber.Ctx) error {
	items, err := h.feedbacks.List(c.UserContext(), parseFeedbackQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": feedbackResponses(items, viewer(c))})
}

// Get GET /feedbacks/:id.
func (h *FeedbacksHandler) Get(c *fiber.Ctx) error {
	feedback, err := h.feedbacks.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": feedbackResponse(feedback, viewer(c))})
}

// GetByTicketCode GET /feedbacks/ticket/:code.
func (h *FeedbacksHandler) GetByTicketCode(c *fiber.Ctx) error {
	feedback, err := h.feedbacks.GetByTicketCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": feedbackResponse(feedback, viewer(c))})
}

// Update PATCH /feedbacks/:id.
func (h *FeedbacksHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	var req dto.UpdateFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	feedback, err := h.feedbacks.Update(c.UserContext(), principal.User, c.Params("id"), service.FeedbackUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Attachments: req.Attachments,
		ChatEnabled: req.ChatEnabled,
		Location:    locationFromRequest(req.Location),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": feedbackResponse(feedback, principal.User)})
}

// Delete DELETE /feedbacks/:id.
func (h *FeedbacksHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	if err := h.feedbacks.Delete(c.UserContext(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// UpdateStatus PATCH /feedbacks/:id/status.
func (h *FeedbacksHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	feedback, err := h.feedbacks.UpdateStatus(c.UserContext(), principal.User, c.Params("id"), domain.FeedbackStatus(req.Status), req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": feedbackResponse(feedback, principal.User)})
}

// Assign PATCH /feedbacks/:id/assign. Admin only, enforced at the route.
func (h *FeedbacksHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	feedback, err := h.feedbacks.Assign(c.UserContext(), principal.User, c.Params("id"), req.AssignedTo)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": feedbackResponse(feedback, principal.User)})
}

// History GET /feedbacks/:id/history.
func (h *FeedbacksHandler) History(c *fiber.Ctx) error {
	entries, err := h.feedbacks.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyResponses(entries)})
}

// Like POST /feedbacks/:id/like.
func (h *FeedbacksHandler) Like(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	feedback, err := h.engagement.LikeFeedback(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": feedbackResponse(feedback, principal.User)})
}

// Unlike DELETE /feedbacks/:id/like.
func (h *FeedbacksHandler) Unlike(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	feedback, err := h.engagement.UnlikeFeedback(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": feedbackResponse(feedback, principal.User)})
}

// Follow POST /feedbacks/:id/follow.
func (h *FeedbacksHandler) Follow(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	feedback, err := h.engagement.FollowFeedback(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": feedbackResponse(feedback, principal.User)})
}

// Unfollow DELETE /feedbacks/:id/follow.
func (h *FeedbacksHandler) Unfollow(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthenticationRequired("user required")
	}
	feedback, err := h.engagement.UnfollowFeedback(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": feedbackResponse(feedback, principal.User)})
}

func parseFeedbackQuery(c *fiber.Ctx) service.FeedbackListFilter {
	filter := service.FeedbackListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.FeedbackStatus(strings.TrimSpace(part)))
		}
	}
	if typeStr := c.Query("type"); typeStr != "" {
		for _, part := range strings.Split(typeStr, ",") {
			filter.Types = append(filter.Types, domain.FeedbackType(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.FeedbackPriority(strings.TrimSpace(part)))
		}
	}
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if author := c.Query("author"); author != "" {
		filter.AuthorID = &author
	}
	if assignee := c.Query("assignedTo"); assignee != "" {
		filter.AssignedTo = &assignee
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("pageSize"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
