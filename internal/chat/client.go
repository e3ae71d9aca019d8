package chat

import "time"

// Message type discriminators on the wire.
const (
	MessageTypeChat  = "new-message"
	MessageTypeError = "error"
)

// InboundMessage is what a connected client sends.
type InboundMessage struct {
	Message string `json:"message"`
}

// ChatPayload is the stored-comment projection broadcast to a room.
type ChatPayload struct {
	ID         string    `json:"id"`
	FeedbackID string    `json:"feedbackId"`
	Message    string    `json:"message"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ErrorPayload is unicast to the offending client only.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OutboundMessage is the envelope written to clients.
type OutboundMessage struct {
	Type  string        `json:"type"`
	Chat  *ChatPayload  `json:"data,omitempty"`
	Error *ErrorPayload `json:"error,omitempty"`
}

// Client is one connected chat participant. The transport layer owns
// the websocket; the hub only ever writes to Send.
type Client struct {
	UserID   string
	UserName string
	Send     chan OutboundMessage

	room string
}

// NewClient creates a client with a buffered outbound channel.
func NewClient(userID, userName string) *Client {
	return &Client{
		UserID:   userID,
		UserName: userName,
		Send:     make(chan OutboundMessage, 16),
	}
}
