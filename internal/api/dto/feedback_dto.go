package dto

import (
	"time"

	"github.com/spec-kit/citizen-feedback-service/internal/domain"
)

// LocationRequest is the optional place a feedback refers to.
type LocationRequest struct {
	Country  string `json:"country" validate:"required"`
	Province string `json:"province" validate:"required"`
	District string `json:"district" validate:"required"`
	Sector   string `json:"sector" validate:"required"`
	Details  string `json:"details"`
}

// CreateFeedbackRequest payload. Priority is not accepted from the
// client; it derives from the feedback type.
type CreateFeedbackRequest struct {
	Title       string           `json:"title" validate:"required,min=3,max=200"`
	Description string           `json:"description" validate:"required,min=10"`
	Type        string           `json:"type" validate:"required"`
	Category    string           `json:"category" validate:"required"`
	Subcategory *string          `json:"subcategory"`
	Attachments []string         `json:"attachments"`
	ChatEnabled bool             `json:"chatEnabled"`
	IsAnonymous bool             `json:"isAnonymous"`
	Location    *LocationRequest `json:"location"`
}

// UpdateFeedbackRequest payload. Omitted fields are left untouched.
type UpdateFeedbackRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string          `json:"description" validate:"omitempty,min=10"`
	Category    *string          `json:"category"`
	Subcategory *string          `json:"subcategory"`
	Attachments []string         `json:"attachments"`
	ChatEnabled *bool            `json:"chatEnabled"`
	Location    *LocationRequest `json:"location"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note"`
}

// AssignRequest payload.
type AssignRequest struct {
	AssignedTo string `json:"assignedTo" validate:"required"`
}

// FeedbackResponse is the viewer-relative projection. HasLiked and
// IsFollowing are null for anonymous viewers; likesCount and
// followerCount are computed from the sets, never read from storage
// counters by the client.
type FeedbackResponse struct {
	ID            string                  `json:"id"`
	TicketCode    string                  `json:"ticketCode"`
	Title         string                  `json:"title"`
	Description   string                  `json:"description"`
	Type          domain.FeedbackType     `json:"type"`
	Status        domain.FeedbackStatus   `json:"status"`
	Category      string                  `json:"category"`
	Subcategory   *string                 `json:"subcategory,omitempty"`
	Priority      domain.FeedbackPriority `json:"priority"`
	AuthorID      *string                 `json:"authorId,omitempty"`
	AssignedTo    *string                 `json:"assignedTo,omitempty"`
	Attachments   []string                `json:"attachments"`
	ChatEnabled   bool                    `json:"chatEnabled"`
	IsAnonymous   bool                    `json:"isAnonymous"`
	Location      *domain.Location        `json:"location,omitempty"`
	LikesCount    int                     `json:"likesCount"`
	HasLiked      *bool                   `json:"hasLiked"`
	FollowerCount int                     `json:"followerCount"`
	IsFollowing   *bool                   `json:"isFollowing"`
	CreatedAt     time.Time               `json:"createdAt"`
	UpdatedAt     time.Time               `json:"updatedAt"`
}

// FeedbackHistoryResponse is one append-only lifecycle entry.
type FeedbackHistoryResponse struct {
	ID        string                `json:"id"`
	OldStatus domain.FeedbackStatus `json:"oldStatus"`
	NewStatus domain.FeedbackStatus `json:"newStatus"`
	ChangedBy *string               `json:"changedBy,omitempty"`
	Note      string                `json:"note,omitempty"`
	CreatedAt time.Time             `json:"createdAt"`
}
