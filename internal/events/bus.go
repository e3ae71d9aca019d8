package events

import (
	"context"
	"sync"
)

// subscriberBuffer bounds each subscriber channel. A subscriber that
// falls this far behind starts losing events, which is acceptable: the
// contract is at-most-once, best-effort, no replay.
const subscriberBuffer = 16

// Bus is the fan-out contract. Publish never blocks on slow consumers
// and never fails the caller's mutation; Subscribe returns a receive
// channel plus a cancel func that closes it.
type Bus interface {
	Publish(ctx context.Context, topic string, event Event) error
	Subscribe(topic string) (<-chan Event, func())
}

// inMemoryBus is the process-local implementation: channel per
// subscriber, keyed by topic. A subscriber attached after an event is
// published receives nothing retroactively.
type inMemoryBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan Event
}

// NewInMemoryBus creates a bus instance.
func NewInMemoryBus() Bus {
	return &inMemoryBus{
		subs: make(map[string]map[int]chan Event),
	}
}

// Publish delivers the event to every current subscriber of the topic.
// Full channels are skipped rather than blocked on.
func (b *inMemoryBus) Publish(_ context.Context, topic string, event Event) error {
	// Sends happen under the read lock: cancel closes channels under the
	// write lock, so a send can never hit a closed channel.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[topic] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe registers a channel for the given topic.
func (b *inMemoryBus) Subscribe(topic string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan Event)
	}
	b.subs[topic][id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if subs, ok := b.subs[topic]; ok {
			if _, ok := subs[id]; ok {
				delete(subs, id)
				close(ch)
			}
			if len(subs) == 0 {
				delete(b.subs, topic)
			}
		}
		b.mu.Unlock()
	}
	return ch, cancel
}
