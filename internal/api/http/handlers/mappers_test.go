package handlers

import (
	"testing"

	"github.com/spec-kit/citizen-feedback-service/internal/domain"
)

func sampleFeedback() *domain.Feedback {
	authorID := "user-a"
	return &domain.Feedback{
		ID:         "fb-1",
		TicketCode: "AB12CD",
		Title:      "Broken streetlight",
		Type:       domain.FeedbackTypeComplaint,
		Status:     domain.FeedbackStatusOpen,
		Category:   "infrastructure",
		Priority:   domain.FeedbackPriorityHigh,
		AuthorID:   &authorID,
		LikedBy:    []string{"user-b"},
		Followers:  []string{"user-a"},
	}
}

func TestFeedbackResponseViewerRelativeFields(t *testing.T) {
	fb := sampleFeedback()

	tests := []struct {
		name          string
		viewer        *domain.User
		wantHasLiked  *bool
		wantFollowing *bool
	}{
		{
			name:          "liker sees hasLiked true",
			viewer:        &domain.User{ID: "user-b", Role: domain.RoleUser},
			wantHasLiked:  boolPtr(true),
			wantFollowing: boolPtr(false),
		},
		{
			name:          "follower sees isFollowing true",
			viewer:        &domain.User{ID: "user-a", Role: domain.RoleUser},
			wantHasLiked:  boolPtr(false),
			wantFollowing: boolPtr(true),
		},
		{
			name:   "anonymous viewer gets null flags",
			viewer: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := feedbackResponse(fb, tt.viewer)

			if resp.LikesCount != len(fb.LikedBy) {
				t.Fatalf("LikesCount = %d, want %d", resp.LikesCount, len(fb.LikedBy))
			}
			if resp.FollowerCount != len(fb.Followers) {
				t.Fatalf("FollowerCount = %d, want %d", resp.FollowerCount, len(fb.Followers))
			}
			assertBoolPtr(t, "HasLiked", resp.HasLiked, tt.wantHasLiked)
			assertBoolPtr(t, "IsFollowing", resp.IsFollowing, tt.wantFollowing)
		})
	}
}

func TestFeedbackResponseAnonymousAuthorRedaction(t *testing.T) {
	fb := sampleFeedback()
	fb.IsAnonymous = true

	tests := []struct {
		name       string
		viewer     *domain.User
		wantAuthor bool
	}{
		{name: "unauthenticated viewer", viewer: nil, wantAuthor: false},
		{name: "other citizen", viewer: &domain.User{ID: "user-b", Role: domain.RoleUser}, wantAuthor: false},
		{name: "the author", viewer: &domain.User{ID: "user-a", Role: domain.RoleUser}, wantAuthor: true},
		{name: "admin", viewer: &domain.User{ID: "user-c", Role: domain.RoleAdmin}, wantAuthor: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := feedbackResponse(fb, tt.viewer)
			if tt.wantAuthor {
				if resp.AuthorID == nil || *resp.AuthorID != "user-a" {
					t.Fatalf("AuthorID = %v, want user-a", resp.AuthorID)
				}
			} else if resp.AuthorID != nil {
				t.Fatalf("AuthorID = %q, want hidden", *resp.AuthorID)
			}
		})
	}
}

func TestCommentResponseHasLiked(t *testing.T) {
	cm := &domain.Comment{
		ID:         "cm-1",
		FeedbackID: "fb-1",
		AuthorID:   "user-a",
		AuthorName: "Alice",
		Message:    "same issue on my street",
		LikedBy:    []string{"user-b"},
	}

	resp := commentResponse(cm, &domain.User{ID: "user-b", Role: domain.RoleUser})
	assertBoolPtr(t, "HasLiked", resp.HasLiked, boolPtr(true))
	if resp.LikesCount != 1 {
		t.Fatalf("LikesCount = %d, want 1", resp.LikesCount)
	}

	resp = commentResponse(cm, nil)
	assertBoolPtr(t, "HasLiked", resp.HasLiked, nil)
}

func TestOfficialResponseHasLiked(t *testing.T) {
	r := &domain.Response{
		ID:         "rs-1",
		FeedbackID: "fb-1",
		ByID:       "staff-1",
		Message:    "crew dispatched",
		LikedBy:    []string{"user-a"},
	}

	resp := officialResponse(r, &domain.User{ID: "user-b", Role: domain.RoleUser})
	assertBoolPtr(t, "HasLiked", resp.HasLiked, boolPtr(false))

	resp = officialResponse(r, nil)
	assertBoolPtr(t, "HasLiked", resp.HasLiked, nil)
}

func boolPtr(v bool) *bool { return &v }

func assertBoolPtr(t *testing.T, field string, got, want *bool) {
	t.Helper()
	if want == nil {
		if got != nil {
			t.Fatalf("%s = %v, want nil", field, *got)
		}
		return
	}
	if got == nil {
		t.Fatalf("%s = nil, want %v", field, *want)
	}
	if *got != *want {
		t.Fatalf("%s = %v, want %v", field, *got, *want)
	}
}
