package dto

import "time"

// CreateCommentRequest payload. ParentID targets a top-level comment;
// replies to replies are rejected.
type CreateCommentRequest struct {
	Message     string   `json:"message" validate:"required,min=1"`
	ParentID    *string  `json:"parentId"`
	Attachments []string `json:"attachments"`
}

// EditCommentRequest payload.
type EditCommentRequest struct {
	Message string `json:"message" validate:"required,min=1"`
}

// CommentResponse is the viewer-relative comment projection.
type CommentResponse struct {
	ID          string    `json:"id"`
	FeedbackID  string    `json:"feedbackId"`
	ParentID    *string   `json:"parentId,omitempty"`
	AuthorID    string    `json:"authorId"`
	AuthorName  string    `json:"authorName"`
	Message     string    `json:"message"`
	Attachments []string  `json:"attachments"`
	LikesCount  int       `json:"likesCount"`
	HasLiked    *bool     `json:"hasLiked"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
