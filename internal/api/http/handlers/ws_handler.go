package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/citizen-feedback-service/internal/auth"
	"github.com/spec-kit/citizen-feedback-service/internal/chat"
	"github.com/spec-kit/citizen-feedback-service/internal/events"
	apperrors "github.com/spec-kit/citizen-feedback-service/pkg/util"
)

// WSHandler serves the websocket endpoints: live event streams for
// feedback and user topics, and the per-feedback chat rooms. Browsers
// cannot set an Authorization header on a websocket handshake, so the
// token travels as a query parameter.
type WSHandler struct {
	authMiddleware *auth.AuthMiddleware
	bus            events.Bus
	hub            *chat.Hub
	logger         *zap.Logger
}

// NewWSHandler constructs handler.
func NewWSHandler(authMiddleware *auth.AuthMiddleware, bus events.Bus, hub *chat.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{authMiddleware: authMiddleware, bus: bus, hub: hub, logger: logger}
}

// Upgrade gates a route to websocket handshakes.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// FeedbackStream serves GET /ws/feedbacks/:id. Any authenticated user
// may watch any feedback's event stream.
func (h *WSHandler) FeedbackStream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		defer conn.Close()
		if _, err := h.authMiddleware.Resolve(context.Background(), conn.Query("token")); err != nil {
			h.writeError(conn, err)
			return
		}
		h.stream(conn, events.FeedbackTopic(conn.Params("id")))
	})
}

// UserStream serves GET /ws/users/:id. Only the user themselves or an
// admin may watch a user topic; the check happens once at subscribe time.
func (h *WSHandler) UserStream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		defer conn.Close()
		principal, err := h.authMiddleware.Resolve(context.Background(), conn.Query("token"))
		if err != nil {
			h.writeError(conn, err)
			return
		}
		userID := conn.Params("id")
		if principal.User.ID != userID && !principal.User.IsAdmin() {
			h.writeError(conn, apperrors.NewForbidden("cannot subscribe to another user's stream"))
			return
		}
		h.stream(conn, events.UserTopic(userID))
	})
}

// Chat serves GET /ws/chat/:id where :id is the feedback of the room.
func (h *WSHandler) Chat() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		defer conn.Close()
		principal, err := h.authMiddleware.Resolve(context.Background(), conn.Query("token"))
		if err != nil {
			h.writeError(conn, err)
			return
		}

		client := chat.NewClient(principal.User.ID, principal.User.Name)
		if err := h.hub.Join(context.Background(), client, conn.Params("id")); err != nil {
			h.writeError(conn, err)
			return
		}
		// No goroutine sends to client.Send once Leave returns, so the
		// close cannot race a broadcast.
		defer func() {
			h.hub.Leave(client)
			close(client.Send)
		}()

		go func() {
			for msg := range client.Send {
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			}
		}()

		for {
			var inbound chat.InboundMessage
			if err := conn.ReadJSON(&inbound); err != nil {
				return
			}
			if err := h.hub.SendMessage(context.Background(), client, inbound.Message); err != nil {
				h.unicastError(client, err)
			}
		}
	})
}

// stream pumps bus events for one topic to the connection until either
// side goes away. Reads are drained only to notice the close.
func (h *WSHandler) stream(conn *websocket.Conn, topic string) {
	ch, cancel := h.bus.Subscribe(topic)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) writeError(conn *websocket.Conn, err error) {
	domainErr := apperrors.ToDomainError(err)
	_ = conn.WriteJSON(chat.OutboundMessage{
		Type:  chat.MessageTypeError,
		Error: &chat.ErrorPayload{Code: domainErr.Code, Message: domainErr.Message},
	})
}

// unicastError delivers a failure to the offending client only; the
// rest of the room never sees it.
func (h *WSHandler) unicastError(client *chat.Client, err error) {
	domainErr := apperrors.ToDomainError(err)
	msg := chat.OutboundMessage{
		Type:  chat.MessageTypeError,
		Error: &chat.ErrorPayload{Code: domainErr.Code, Message: domainErr.Message},
	}
	select {
	case client.Send <- msg:
	default:
		h.logger.Warn("chat client send buffer full, dropping error", zap.String("user_id", client.UserID))
	}
}
