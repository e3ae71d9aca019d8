package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/spec-kit/citizen-feedback-service/internal/domain"
	"github.com/spec-kit/citizen-feedback-service/internal/events"
	apperrors "github.com/spec-kit/citizen-feedback-service/pkg/util"
)

func newEngagementFixture() (*EngagementService, *fakeFeedbackRepo, *fakeCommentRepo, *fakeResponseRepo, *fakeBus) {
	feedbacks := newFakeFeedbackRepo()
	comments := newFakeCommentRepo()
	responses := newFakeResponseRepo()
	bus := newFakeBus()
	svc := NewEngagementService(EngagementDependencies{
		FeedbackRepo: feedbacks,
		CommentRepo:  comments,
		ResponseRepo: responses,
		Bus:          bus,
	})
	return svc, feedbacks, comments, responses, bus
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	domainErr := apperrors.ToDomainError(err)
	return domainErr.Code
}

func TestLikeFeedbackRoundTrip(t *testing.T) {
	svc, feedbacks, _, _, _ := newEngagementFixture()
	feedbacks.seed(&domain.Feedback{ID: "fb-1", Status: domain.FeedbackStatusOpen})

	liked, err := svc.LikeFeedback(context.Background(), "alice", "fb-1")
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if liked.Likes != 1 || !contains(liked.LikedBy, "alice") {
		t.Fatalf("expected alice in like set with count 1, got likes=%d likedBy=%v", liked.Likes, liked.LikedBy)
	}

	unliked, err := svc.UnlikeFeedback(context.Background(), "alice", "fb-1")
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if unliked.Likes != 0 || contains(unliked.LikedBy, "alice") {
		t.Fatalf("expected empty like set after round trip, got likes=%d likedBy=%v", unliked.Likes, unliked.LikedBy)
	}
}

func TestLikeFeedbackIdempotencyViolations(t *testing.T) {
	svc, feedbacks, _, _, _ := newEngagementFixture()
	feedbacks.seed(&domain.Feedback{ID: "fb-1"})

	if _, err := svc.LikeFeedback(context.Background(), "alice", "fb-1"); err != nil {
		t.Fatalf("first like: %v", err)
	}
	if _, err := svc.LikeFeedback(context.Background(), "alice", "fb-1"); errCode(t, err) != "ALREADY_LIKED" {
		t.Fatalf("second like: expected ALREADY_LIKED, got %v", err)
	}

	if _, err := svc.UnlikeFeedback(context.Background(), "bob", "fb-1"); errCode(t, err) != "NOT_LIKED" {
		t.Fatalf("unlike without like: expected NOT_LIKED, got %v", err)
	}
}

func TestLikeFeedbackNotFound(t *testing.T) {
	svc, _, _, _, _ := newEngagementFixture()
	if _, err := svc.LikeFeedback(context.Background(), "alice", "missing"); errCode(t, err) != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if _, err := svc.UnfollowFeedback(context.Background(), "alice", "missing"); errCode(t, err) != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestFollowUnfollowFeedback(t *testing.T) {
	svc, feedbacks, _, _, _ := newEngagementFixture()
	feedbacks.seed(&domain.Feedback{ID: "fb-1"})

	followed, err := svc.FollowFeedback(context.Background(), "alice", "fb-1")
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if !contains(followed.Followers, "alice") {
		t.Fatalf("expected alice in follower set, got %v", followed.Followers)
	}

	if _, err := svc.FollowFeedback(context.Background(), "alice", "fb-1"); errCode(t, err) != "ALREADY_FOLLOWING" {
		t.Fatalf("expected ALREADY_FOLLOWING, got %v", err)
	}

	if _, err := svc.UnfollowFeedback(context.Background(), "alice", "fb-1"); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if _, err := svc.UnfollowFeedback(context.Background(), "alice", "fb-1"); errCode(t, err) != "NOT_FOLLOWING" {
		t.Fatalf("expected NOT_FOLLOWING, got %v", err)
	}
}

// Many users racing on the same feedback must each land exactly once in
// the like set, with the counter matching the set size.
func TestLikeFeedbackConcurrent(t *testing.T) {
	svc, feedbacks, _, _, _ := newEngagementFixture()
	feedbacks.seed(&domain.Feedback{ID: "fb-1"})

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.LikeFeedback(context.Background(), fmt.Sprintf("user-%d", i), "fb-1")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent like: %v", err)
		}
	}

	feedback, err := feedbacks.GetByID(context.Background(), "fb-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if feedback.Likes != n || len(feedback.LikedBy) != n {
		t.Fatalf("expected %d likes matching set size, got likes=%d set=%d", n, feedback.Likes, len(feedback.LikedBy))
	}
}

func TestLikeCommentAndResponse(t *testing.T) {
	svc, _, comments, responses, bus := newEngagementFixture()
	comments.items["cm-1"] = &domain.Comment{ID: "cm-1", FeedbackID: "fb-1"}
	responses.items["rs-1"] = &domain.Response{ID: "rs-1", FeedbackID: "fb-1"}

	comment, err := svc.LikeComment(context.Background(), "alice", "cm-1")
	if err != nil {
		t.Fatalf("like comment: %v", err)
	}
	if comment.Likes != 1 {
		t.Fatalf("expected 1 comment like, got %d", comment.Likes)
	}
	if _, err := svc.LikeComment(context.Background(), "alice", "cm-1"); errCode(t, err) != "ALREADY_LIKED" {
		t.Fatalf("expected ALREADY_LIKED, got %v", err)
	}

	response, err := svc.LikeResponse(context.Background(), "alice", "rs-1")
	if err != nil {
		t.Fatalf("like response: %v", err)
	}
	if response.Likes != 1 {
		t.Fatalf("expected 1 response like, got %d", response.Likes)
	}
	if _, err := svc.UnlikeResponse(context.Background(), "bob", "rs-1"); errCode(t, err) != "NOT_LIKED" {
		t.Fatalf("expected NOT_LIKED, got %v", err)
	}

	// Child engagement changes surface on the parent feedback's topic.
	topics := bus.topicsFor(events.EventFeedbackUpdated)
	found := false
	for _, topic := range topics {
		if topic == "feedback:fb-1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an update on feedback:fb-1, got topics %v", topics)
	}
}

func TestEngagementPublishesOnSuccessOnly(t *testing.T) {
	svc, feedbacks, _, _, bus := newEngagementFixture()
	feedbacks.seed(&domain.Feedback{ID: "fb-1"})

	if _, err := svc.LikeFeedback(context.Background(), "alice", "fb-1"); err != nil {
		t.Fatalf("like: %v", err)
	}
	before := bus.countByType(events.EventFeedbackUpdated)

	if _, err := svc.LikeFeedback(context.Background(), "alice", "fb-1"); err == nil {
		t.Fatal("expected duplicate like to fail")
	}
	if after := bus.countByType(events.EventFeedbackUpdated); after != before {
		t.Fatalf("violation must not publish: events went %d -> %d", before, after)
	}
}
