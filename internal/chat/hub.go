package chat

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/citizen-feedback-service/internal/domain"
	apperrors "github.com/spec-kit/citizen-feedback-service/pkg/util"
)

// FeedbackGetter loads a feedback for room validation.
type FeedbackGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Feedback, error)
}

// ChatCommentCreator persists a chat message as a comment.
type ChatCommentCreator interface {
	CreateFromChat(ctx context.Context, feedbackID, authorID, authorName, message string) (*domain.Comment, error)
}

// Hub tracks chat rooms keyed by feedback id. Rooms are created on first
// join and removed when the last client leaves.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Client]struct{}
	feedback FeedbackGetter
	comments ChatCommentCreator
	logger   *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(feedback FeedbackGetter, comments ChatCommentCreator, logger *zap.Logger) *Hub {
	return &Hub{
		rooms:    make(map[string]map[*Client]struct{}),
		feedback: feedback,
		comments: comments,
		logger:   logger,
	}
}

// Join validates the feedback and registers the client in its room.
// Validation failures are returned, not broadcast; the transport layer
// unicasts them to the joining client only.
func (h *Hub) Join(ctx context.Context, client *Client, feedbackID string) error {
	feedback, err := h.feedback.GetByID(ctx, feedbackID)
	if err != nil {
		return err
	}
	if !feedback.ChatEnabled {
		return apperrors.NewForbidden("chat is disabled for this feedback")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[feedbackID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[feedbackID] = room
	}
	room[client] = struct{}{}
	client.room = feedbackID

	h.logger.Debug("chat join",
		zap.String("feedback_id", feedbackID),
		zap.String("user_id", client.UserID),
		zap.Int("room_size", len(room)))
	return nil
}

// Leave removes the client from its room. Safe to call for a client
// that never joined, or twice; disconnects carry no announcement.
func (h *Hub) Leave(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[client.room]
	if !ok {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, client.room)
	}
	client.room = ""
}

// SendMessage persists the message as a comment on the room's feedback
// and broadcasts the stored projection to every room member, including
// the sender. Chat access is revalidated on every message, so a room
// whose feedback had chat disabled mid-session stops accepting sends.
func (h *Hub) SendMessage(ctx context.Context, client *Client, message string) error {
	if client.room == "" {
		return apperrors.NewValidationError("join a room before sending", nil)
	}
	comment, err := h.comments.CreateFromChat(ctx, client.room, client.UserID, client.UserName, message)
	if err != nil {
		return err
	}
	h.broadcast(client.room, OutboundMessage{
		Type: MessageTypeChat,
		Chat: &ChatPayload{
			ID:         comment.ID,
			FeedbackID: comment.FeedbackID,
			Message:    comment.Message,
			AuthorName: comment.AuthorName,
			CreatedAt:  comment.CreatedAt,
		},
	})
	return nil
}

// RoomSize reports the number of clients in a room.
func (h *Hub) RoomSize(feedbackID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[feedbackID])
}

func (h *Hub) broadcast(feedbackID string, msg OutboundMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[feedbackID] {
		select {
		case client.Send <- msg:
		default:
			h.logger.Warn("chat client send buffer full, dropping message",
				zap.String("feedback_id", feedbackID),
				zap.String("user_id", client.UserID))
		}
	}
}
