// Package event provides the in-process fire-and-forget bus between the
// user service and its listeners. A slow or dead subscriber never blocks
// a publisher: each subscription has a bounded queue and overflow drops.
package event

import (
	"sync"

	"go.uber.org/zap"
)

const TopicUsersInactive = "users.inactive"

// Event is what subscribers receive.
type Event struct {
	Topic   string
	Payload any
}

const defaultQueueSize = 16

type Bus struct {
	log *zap.Logger

	mu     sync.RWMutex
	subs   map[string][]chan Event
	closed bool
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{
		log:  log,
		subs: map[string][]chan Event{},
	}
}

// Subscribe registers a listener for topic. The returned channel is
// closed when the bus shuts down.
func (b *Bus) Subscribe(topic string) <-chan Event {
	ch := make(chan Event, defaultQueueSize)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[topic] = append(b.subs[topic], ch)
	return ch
}

// Publish delivers at-most-once to every subscriber of topic, without
// blocking. Events for full queues are dropped and logged.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs[topic] {
		select {
		case ch <- Event{Topic: topic, Payload: payload}:
		default:
			b.log.Warn("event dropped, subscriber queue full", zap.String("topic", topic))
		}
	}
}

// Close closes all subscriber channels. Publish after Close is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, chans := range b.subs {
		for _, ch := range chans {
			close(ch)
		}
	}
	b.subs = map[string][]chan Event{}
}
