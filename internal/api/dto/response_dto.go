package dto

import (
	"time"

	"github.com/spec-kit/citizen-feedback-service/internal/domain"
)

// CreateResponseRequest payload for official replies. StatusUpdate,
// when set, moves the feedback's lifecycle in the same call.
type CreateResponseRequest struct {
	Message      string  `json:"message" validate:"required,min=1"`
	StatusUpdate *string `json:"statusUpdate"`
}

// UpdateResponseRequest payload.
type UpdateResponseRequest struct {
	Message string `json:"message" validate:"required,min=1"`
}

// OfficialResponse is the viewer-relative projection of a staff reply.
type OfficialResponse struct {
	ID           string                 `json:"id"`
	FeedbackID   string                 `json:"feedbackId"`
	ByID         string                 `json:"byId"`
	Message      string                 `json:"message"`
	StatusUpdate *domain.FeedbackStatus `json:"statusUpdate,omitempty"`
	LikesCount   int                    `json:"likesCount"`
	HasLiked     *bool                  `json:"hasLiked"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}
