package service

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/spec-kit/citizen-feedback-service/internal/events"
)

// publish stamps the event and fans it out to every given topic plus the
// firehose. Fan-out is best-effort: a failed publication never fails the
// mutation that produced it.
func publish(ctx context.Context, bus events.Bus, event events.Event, topics ...string) {
	if bus == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	for _, topic := range topics {
		_ = bus.Publish(ctx, topic, event)
	}
	_ = bus.Publish(ctx, events.TopicFirehose, event)
}

// feedbackTopics returns the entity topic plus the author's user topic
// when the feedback is not anonymous.
func feedbackTopics(feedbackID string, authorID *string) []string {
	topics := []string{events.FeedbackTopic(feedbackID)}
	if authorID != nil {
		topics = append(topics, events.UserTopic(*authorID))
	}
	return topics
}

func preview(body string, max int) string {
	if len(body) <= max {
		return body
	}
	cut := max - 3
	if max <= 3 {
		cut = max
	}
	// Back up to a rune start so the cut never splits a multi-byte rune.
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	if max <= 3 {
		return body[:cut]
	}
	return body[:cut] + "..."
}
