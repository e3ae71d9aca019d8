package events

import (
	"time"

	"github.com/spec-kit/citizen-feedback-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventFeedbackCreated       EventType = "feedback_created"
	EventFeedbackUpdated       EventType = "feedback_updated"
	EventFeedbackStatusChanged EventType = "feedback_status_changed"
	EventFeedbackDeleted       EventType = "feedback_deleted"
	EventCommentAdded          EventType = "comment_added"
	EventResponseAdded         EventType = "response_added"
)

// Topic names. A feedback change is published on its entity topic for
// anyone viewing it and on the author's user topic regardless of what
// the author is viewing; the firehose feeds the notification consumer.
const TopicFirehose = "firehose"

// FeedbackTopic returns the entity-scoped topic for a feedback.
func FeedbackTopic(feedbackID string) string {
	return "feedback:" + feedbackID
}

// UserTopic returns the user-scoped topic for an author.
func UserTopic(userID string) string {
	return "user:" + userID
}

// Event is the unit of fan-out. Payloads are JSON-serializable so the
// Redis-backed bus can carry them unchanged.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	FeedbackID string      `json:"feedback_id"`
	ActorID    *string     `json:"actor_id,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// FeedbackStatusChangedPayload payload.
type FeedbackStatusChangedPayload struct {
	OldStatus domain.FeedbackStatus `json:"old_status"`
	NewStatus domain.FeedbackStatus `json:"new_status"`
	Note      string                `json:"note,omitempty"`
}

// FeedbackCreatedPayload payload.
type FeedbackCreatedPayload struct {
	TicketCode string                  `json:"ticket_code"`
	Type       domain.FeedbackType     `json:"feedback_type"`
	Category   string                  `json:"category"`
	Priority   domain.FeedbackPriority `json:"priority"`
	Title      string                  `json:"title"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID  string  `json:"comment_id"`
	ParentID   *string `json:"parent_id,omitempty"`
	AuthorName string  `json:"author_name"`
	Preview    string  `json:"preview"`
}

// ResponseAddedPayload payload.
type ResponseAddedPayload struct {
	ResponseID   string                 `json:"response_id"`
	StatusUpdate *domain.FeedbackStatus `json:"status_update,omitempty"`
	Preview      string                 `json:"preview"`
}
