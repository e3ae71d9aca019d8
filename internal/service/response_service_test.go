package service

import (
	"context"
	"testing"

	"github.com/spec-kit/citizen-feedback-service/internal/domain"
)

func newResponseFixture() (*ResponseService, *fakeResponseRepo, *fakeFeedbackRepo, *fakeHistoryRepo, *fakeBus) {
	responses := newFakeResponseRepo()
	feedbacks := newFakeFeedbackRepo()
	history := newFakeHistoryRepo()
	bus := newFakeBus()
	svc := NewResponseService(ResponseDependencies{
		ResponseRepo: responses,
		FeedbackRepo: feedbacks,
		HistoryRepo:  history,
		Bus:          bus,
	})
	return svc, responses, feedbacks, history, bus
}

func TestResponseWithStatusUpdateAdvancesLifecycle(t *testing.T) {
	svc, _, feedbacks, history, _ := newResponseFixture()
	feedbacks.seed(&domain.Feedback{ID: "fb-1", Status: domain.FeedbackStatusOpen})

	resolved := domain.FeedbackStatusResolved
	response, err := svc.Create(context.Background(), admin("staff-1"), ResponseCreateInput{
		FeedbackID:   "fb-1",
		Message:      "Crew dispatched, pothole filled this morning.",
		StatusUpdate: &resolved,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if response.StatusUpdate == nil || *response.StatusUpdate != resolved {
		t.Fatalf("expected statusUpdate recorded on the response, got %v", response.StatusUpdate)
	}

	feedback, err := feedbacks.GetByID(context.Background(), "fb-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if feedback.Status != resolved {
		t.Fatalf("expected feedback moved to resolved, got %s", feedback.Status)
	}

	entries, err := history.ListByFeedback(context.Background(), "fb-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 1 || entries[0].NewStatus != resolved {
		t.Fatalf("expected one history entry for the implicit transition, got %+v", entries)
	}
}

func TestResponseWithSameStatusDoesNotAppendHistory(t *testing.T) {
	svc, _, feedbacks, history, _ := newResponseFixture()
	feedbacks.seed(&domain.Feedback{ID: "fb-1", Status: domain.FeedbackStatusOpen})

	open := domain.FeedbackStatusOpen
	if _, err := svc.Create(context.Background(), admin("staff-1"), ResponseCreateInput{
		FeedbackID:   "fb-1",
		Message:      "We are looking into it.",
		StatusUpdate: &open,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	entries, err := history.ListByFeedback(context.Background(), "fb-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("no-op status must not append history, got %+v", entries)
	}
}

func TestResponseRejectsUnknownStatus(t *testing.T) {
	svc, _, feedbacks, _, _ := newResponseFixture()
	feedbacks.seed(&domain.Feedback{ID: "fb-1", Status: domain.FeedbackStatusOpen})

	bogus := domain.FeedbackStatus("escalated")
	_, err := svc.Create(context.Background(), admin("staff-1"), ResponseCreateInput{
		FeedbackID:   "fb-1",
		Message:      "m",
		StatusUpdate: &bogus,
	})
	if errCode(t, err) != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestResponseUpdateAuthorOnly(t *testing.T) {
	svc, _, feedbacks, _, _ := newResponseFixture()
	feedbacks.seed(&domain.Feedback{ID: "fb-1", Status: domain.FeedbackStatusOpen})

	response, err := svc.Create(context.Background(), admin("staff-1"), ResponseCreateInput{
		FeedbackID: "fb-1",
		Message:    "original wording",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(context.Background(), admin("staff-2"), response.ID, "rewritten"); errCode(t, err) != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN for a different staff account, got %v", err)
	}
	updated, err := svc.Update(context.Background(), admin("staff-1"), response.ID, "clarified wording")
	if err != nil {
		t.Fatalf("author update: %v", err)
	}
	if updated.Message != "clarified wording" {
		t.Fatalf("unexpected message %q", updated.Message)
	}
}
