package domain

import "time"

// FeedbackHistory is an append-only audit entry for a status change.
// Entries are never edited or truncated.
type FeedbackHistory struct {
	ID         string
	FeedbackID string
	ChangedBy  *string
	OldStatus  FeedbackStatus
	NewStatus  FeedbackStatus
	Note       string
	CreatedAt  time.Time
}
