package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisBus implements Bus on Redis Pub/Sub so multiple processes can
// share the same fan-out without changing any service call sites.
// Redis Pub/Sub already matches the contract: at-most-once, no replay.
type redisBus struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisBus creates a Redis-backed bus.
func NewRedisBus(client *redis.Client, logger *zap.Logger) Bus {
	return &redisBus{client: client, logger: logger}
}

func (b *redisBus) Publish(ctx context.Context, topic string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, topic, payload).Err(); err != nil {
		// publication failures never fail the originating mutation
		b.logger.Warn("redis publish failed", zap.String("topic", topic), zap.Error(err))
	}
	return nil
}

func (b *redisBus) Subscribe(topic string) (<-chan Event, func()) {
	pubsub := b.client.Subscribe(context.Background(), topic)
	ch := make(chan Event, subscriberBuffer)

	go func() {
		defer close(ch)
		for msg := range pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn("malformed event payload", zap.String("topic", topic), zap.Error(err))
				continue
			}
			select {
			case ch <- event:
			default:
			}
		}
	}()

	cancel := func() {
		_ = pubsub.Close()
	}
	return ch, cancel
}
