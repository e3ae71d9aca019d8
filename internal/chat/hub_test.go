package chat

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/citizen-feedback-service/internal/domain"
	apperrors "github.com/spec-kit/citizen-feedback-service/pkg/util"
)

type stubFeedbackGetter struct {
	feedbacks map[string]*domain.Feedback
}

func (s *stubFeedbackGetter) GetByID(_ context.Context, id string) (*domain.Feedback, error) {
	feedback, ok := s.feedbacks[id]
	if !ok {
		return nil, apperrors.NewNotFound("feedback", map[string]any{"feedback_id": id})
	}
	return feedback, nil
}

type stubCommentCreator struct {
	feedbacks *stubFeedbackGetter
	nextID    int
	failWith  error
}

func (s *stubCommentCreator) CreateFromChat(ctx context.Context, feedbackID, authorID, authorName, message string) (*domain.Comment, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	feedback, err := s.feedbacks.GetByID(ctx, feedbackID)
	if err != nil {
		return nil, err
	}
	if !feedback.ChatEnabled {
		return nil, apperrors.NewForbidden("chat is disabled for this feedback")
	}
	s.nextID++
	return &domain.Comment{
		ID:         fmt.Sprintf("cm-%d", s.nextID),
		FeedbackID: feedbackID,
		AuthorID:   authorID,
		AuthorName: authorName,
		Message:    message,
	}, nil
}

func newHubFixture(feedbacks ...*domain.Feedback) (*Hub, *stubFeedbackGetter, *stubCommentCreator) {
	getter := &stubFeedbackGetter{feedbacks: make(map[string]*domain.Feedback)}
	for _, f := range feedbacks {
		getter.feedbacks[f.ID] = f
	}
	creator := &stubCommentCreator{feedbacks: getter}
	hub := NewHub(getter, creator, zap.NewNop())
	return hub, getter, creator
}

func code(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	return apperrors.ToDomainError(err).Code
}

func TestJoinValidatesRoom(t *testing.T) {
	hub, _, _ := newHubFixture(
		&domain.Feedback{ID: "fb-chat", ChatEnabled: true},
		&domain.Feedback{ID: "fb-silent", ChatEnabled: false},
	)

	if err := hub.Join(context.Background(), NewClient("u1", "Jane"), "missing"); code(t, err) != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND for missing feedback, got %v", err)
	}
	if err := hub.Join(context.Background(), NewClient("u1", "Jane"), "fb-silent"); code(t, err) != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN for disabled chat, got %v", err)
	}
	if err := hub.Join(context.Background(), NewClient("u1", "Jane"), "fb-chat"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if got := hub.RoomSize("fb-chat"); got != 1 {
		t.Fatalf("expected room size 1, got %d", got)
	}
}

func TestSendMessageBroadcastsIncludingSender(t *testing.T) {
	hub, _, _ := newHubFixture(&domain.Feedback{ID: "fb-chat", ChatEnabled: true})

	sender := NewClient("u1", "Jane")
	listener := NewClient("u2", "Omar")
	for _, client := range []*Client{sender, listener} {
		if err := hub.Join(context.Background(), client, "fb-chat"); err != nil {
			t.Fatalf("join: %v", err)
		}
	}

	if err := hub.SendMessage(context.Background(), sender, "hello everyone"); err != nil {
		t.Fatalf("send: %v", err)
	}

	for _, client := range []*Client{sender, listener} {
		select {
		case msg := <-client.Send:
			if msg.Type != MessageTypeChat || msg.Chat == nil {
				t.Fatalf("expected chat message, got %+v", msg)
			}
			if msg.Chat.Message != "hello everyone" || msg.Chat.AuthorName != "Jane" {
				t.Fatalf("unexpected projection %+v", msg.Chat)
			}
			if msg.Chat.ID == "" {
				t.Fatal("broadcast must carry the stored comment id")
			}
		default:
			t.Fatalf("client %s did not receive the broadcast", client.UserID)
		}
	}
}

func TestSendMessageFailureIsNotBroadcast(t *testing.T) {
	feedback := &domain.Feedback{ID: "fb-chat", ChatEnabled: true}
	hub, _, _ := newHubFixture(feedback)

	sender := NewClient("u1", "Jane")
	listener := NewClient("u2", "Omar")
	for _, client := range []*Client{sender, listener} {
		if err := hub.Join(context.Background(), client, "fb-chat"); err != nil {
			t.Fatalf("join: %v", err)
		}
	}

	// Chat disabled mid-session: the revalidation on send must reject.
	feedback.ChatEnabled = false
	if err := hub.SendMessage(context.Background(), sender, "too late"); code(t, err) != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	select {
	case msg := <-listener.Send:
		t.Fatalf("failure must not reach the room, got %+v", msg)
	default:
	}
}

func TestSendMessageRequiresJoin(t *testing.T) {
	hub, _, _ := newHubFixture(&domain.Feedback{ID: "fb-chat", ChatEnabled: true})
	err := hub.SendMessage(context.Background(), NewClient("u1", "Jane"), "hello")
	if code(t, err) != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED before join, got %v", err)
	}
}

func TestLeaveIsSilentAndPrunesRoom(t *testing.T) {
	hub, _, _ := newHubFixture(&domain.Feedback{ID: "fb-chat", ChatEnabled: true})

	leaver := NewClient("u1", "Jane")
	stayer := NewClient("u2", "Omar")
	for _, client := range []*Client{leaver, stayer} {
		if err := hub.Join(context.Background(), client, "fb-chat"); err != nil {
			t.Fatalf("join: %v", err)
		}
	}

	hub.Leave(leaver)
	hub.Leave(leaver) // second leave is a no-op

	if got := hub.RoomSize("fb-chat"); got != 1 {
		t.Fatalf("expected room size 1 after leave, got %d", got)
	}
	select {
	case msg := <-stayer.Send:
		t.Fatalf("disconnects carry no announcement, got %+v", msg)
	default:
	}

	hub.Leave(stayer)
	if got := hub.RoomSize("fb-chat"); got != 0 {
		t.Fatalf("expected empty room pruned, got size %d", got)
	}
}
