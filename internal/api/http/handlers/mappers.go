package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/citizen-feedback-service/internal/api/dto"
	"github.com/spec-kit/citizen-feedback-service/internal/auth"
	"github.com/spec-kit/citizen-feedback-service/internal/domain"
)

// viewer returns the authenticated user, or nil for anonymous requests.
func viewer(c *fiber.Ctx) *domain.User {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal == nil {
		return nil
	}
	return principal.User
}

func containsUser(set []string, userID string) bool {
	for _, id := range set {
		if id == userID {
			return true
		}
	}
	return false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// feedbackResponse computes the viewer-relative projection. Counts come
// from the membership sets; hasLiked and isFollowing stay null for
// anonymous viewers. The author id of an anonymous submission is only
// revealed to the author themselves and to admins.
func feedbackResponse(f *domain.Feedback, u *domain.User) dto.FeedbackResponse {
	resp := dto.FeedbackResponse{
		ID:            f.ID,
		TicketCode:    f.TicketCode,
		Title:         f.Title,
		Description:   f.Description,
		Type:          f.Type,
		Status:        f.Status,
		Category:      f.Category,
		Subcategory:   f.Subcategory,
		Priority:      f.Priority,
		AuthorID:      f.AuthorID,
		AssignedTo:    f.AssignedTo,
		Attachments:   nonNil(f.Attachments),
		ChatEnabled:   f.ChatEnabled,
		IsAnonymous:   f.IsAnonymous,
		Location:      f.Location,
		LikesCount:    len(f.LikedBy),
		FollowerCount: len(f.Followers),
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
	if f.IsAnonymous {
		isAuthor := u != nil && f.AuthorID != nil && *f.AuthorID == u.ID
		if !isAuthor && !u.IsAdmin() {
			resp.AuthorID = nil
		}
	}
	if u != nil {
		liked := containsUser(f.LikedBy, u.ID)
		following := containsUser(f.Followers, u.ID)
		resp.HasLiked = &liked
		resp.IsFollowing = &following
	}
	return resp
}

func feedbackResponses(items []domain.Feedback, u *domain.User) []dto.FeedbackResponse {
	resp := make([]dto.FeedbackResponse, 0, len(items))
	for i := range items {
		resp = append(resp, feedbackResponse(&items[i], u))
	}
	return resp
}

func commentResponse(cm *domain.Comment, u *domain.User) dto.CommentResponse {
	resp := dto.CommentResponse{
		ID:          cm.ID,
		FeedbackID:  cm.FeedbackID,
		ParentID:    cm.ParentID,
		AuthorID:    cm.AuthorID,
		AuthorName:  cm.AuthorName,
		Message:     cm.Message,
		Attachments: nonNil(cm.Attachments),
		LikesCount:  len(cm.LikedBy),
		CreatedAt:   cm.CreatedAt,
		UpdatedAt:   cm.UpdatedAt,
	}
	if u != nil {
		liked := containsUser(cm.LikedBy, u.ID)
		resp.HasLiked = &liked
	}
	return resp
}

func commentResponses(items []domain.Comment, u *domain.User) []dto.CommentResponse {
	resp := make([]dto.CommentResponse, 0, len(items))
	for i := range items {
		resp = append(resp, commentResponse(&items[i], u))
	}
	return resp
}

func officialResponse(r *domain.Response, u *domain.User) dto.OfficialResponse {
	resp := dto.OfficialResponse{
		ID:           r.ID,
		FeedbackID:   r.FeedbackID,
		ByID:         r.ByID,
		Message:      r.Message,
		StatusUpdate: r.StatusUpdate,
		LikesCount:   len(r.LikedBy),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if u != nil {
		liked := containsUser(r.LikedBy, u.ID)
		resp.HasLiked = &liked
	}
	return resp
}

func officialResponses(items []domain.Response, u *domain.User) []dto.OfficialResponse {
	resp := make([]dto.OfficialResponse, 0, len(items))
	for i := range items {
		resp = append(resp, officialResponse(&items[i], u))
	}
	return resp
}

func userResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Category:  u.Category,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func historyResponses(entries []domain.FeedbackHistory) []dto.FeedbackHistoryResponse {
	resp := make([]dto.FeedbackHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.FeedbackHistoryResponse{
			ID:        entry.ID,
			OldStatus: entry.OldStatus,
			NewStatus: entry.NewStatus,
			ChangedBy: entry.ChangedBy,
			Note:      entry.Note,
			CreatedAt: entry.CreatedAt,
		})
	}
	return resp
}

func locationFromRequest(req *dto.LocationRequest) *domain.Location {
	if req == nil {
		return nil
	}
	return &domain.Location{
		Country:  req.Country,
		Province: req.Province,
		District: req.District,
		Sector:   req.Sector,
		Details:  req.Details,
	}
}
