package domain

import "time"

// FeedbackType classifies a submission.
type FeedbackType string

const (
	FeedbackTypeComplaint  FeedbackType = "Complaint"
	FeedbackTypePositive   FeedbackType = "Positive"
	FeedbackTypeSuggestion FeedbackType = "Suggestion"
)

// FeedbackStatus enumerates lifecycle states. Transitions are free-form;
// reopening a closed item is allowed.
type FeedbackStatus string

const (
	FeedbackStatusOpen       FeedbackStatus = "open"
	FeedbackStatusInProgress FeedbackStatus = "in-progress"
	FeedbackStatusResolved   FeedbackStatus = "resolved"
	FeedbackStatusClosed     FeedbackStatus = "closed"
)

// FeedbackPriority enumerates urgency.
type FeedbackPriority string

const (
	FeedbackPriorityLow    FeedbackPriority = "low"
	FeedbackPriorityMedium FeedbackPriority = "medium"
	FeedbackPriorityHigh   FeedbackPriority = "high"
	FeedbackPriorityUrgent FeedbackPriority = "urgent"
)

// Location captures the optional place a feedback refers to.
type Location struct {
	Country  string `json:"country"`
	Province string `json:"province"`
	District string `json:"district"`
	Sector   string `json:"sector"`
	Details  string `json:"details,omitempty"`
}

// Feedback is the root engagement target. LikedBy and Followers are the
// source of truth for counts; Likes mirrors len(LikedBy) and is maintained
// in the same atomic update that mutates the set.
type Feedback struct {
	ID          string
	TicketCode  string
	Title       string
	Description string
	Type        FeedbackType
	Status      FeedbackStatus
	Category    string
	Subcategory *string
	Priority    FeedbackPriority
	AuthorID    *string
	AssignedTo  *string
	Attachments []string
	ChatEnabled bool
	Likes       int
	LikedBy     []string
	Followers   []string
	IsAnonymous bool
	Location    *Location
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DerivePriority maps a feedback type to its creation-time priority.
func DerivePriority(t FeedbackType) FeedbackPriority {
	switch t {
	case FeedbackTypeComplaint:
		return FeedbackPriorityHigh
	case FeedbackTypeSuggestion:
		return FeedbackPriorityMedium
	case FeedbackTypePositive:
		return FeedbackPriorityLow
	default:
		return FeedbackPriorityMedium
	}
}

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s FeedbackStatus) bool {
	switch s {
	case FeedbackStatusOpen, FeedbackStatusInProgress, FeedbackStatusResolved, FeedbackStatusClosed:
		return true
	}
	return false
}

// ValidType reports whether t is a known submission type.
func ValidType(t FeedbackType) bool {
	switch t {
	case FeedbackTypeComplaint, FeedbackTypePositive, FeedbackTypeSuggestion:
		return true
	}
	return false
}
