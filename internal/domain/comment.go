package domain

import "time"

// Comment is a public remark on a feedback thread. AuthorName is a
// snapshot of the author's display name at creation time and is never
// refreshed when the profile changes.
type Comment struct {
	ID          string
	FeedbackID  string
	ParentID    *string
	AuthorID    string
	AuthorName  string
	Message     string
	Attachments []string
	Likes       int
	LikedBy     []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
