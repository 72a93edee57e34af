// Package eventbus is a small in-process pub/sub layer that decouples the
// relay from observers such as the log ring.
package eventbus

import (
	"sync"
	"time"
)

type subscriber struct {
	id      int
	handler Handler
}

// Bus fans events out to topic subscribers. Delivery is synchronous and in
// subscription order; handlers must not block.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Topic][]subscriber
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		subs: make(map[Topic][]subscriber),
	}
}

// Subscribe registers handler for topic and returns a token for Unsubscribe.
func (b *Bus) Subscribe(topic Topic, handler Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs[topic] = append(b.subs[topic], subscriber{id: b.nextID, handler: handler})
	return b.nextID
}

// Unsubscribe removes the subscription identified by token.
func (b *Bus) Unsubscribe(topic Topic, token int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == token {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers payload to every subscriber of topic.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.RLock()
	subs := make([]subscriber, len(b.subs[topic]))
	copy(subs, b.subs[topic])
	b.mu.RUnlock()

	event := Event{
		Topic:     topic,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	for _, s := range subs {
		s.handler(event)
	}
}
