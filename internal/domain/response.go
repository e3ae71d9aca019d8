package domain

import "time"

// Response is an official staff/admin reply. StatusUpdate, when set,
// mirrors the status the feedback was moved to by this response.
type Response struct {
	ID           string
	FeedbackID   string
	ByID         string
	Message      string
	StatusUpdate *FeedbackStatus
	Likes        int
	LikedBy      []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
