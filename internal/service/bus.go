package service

import (
	"strconv"
	"sync"
)

// Event is a map command or host notification.
type Event struct {
	Resource string // "marker", "arrow", "popup", "view", "host"
	Action   string // e.g. "attached", "opened", "highlighted"
	ID       string // marker/arrow index or image id, when there is one
	Data     any    // payload sent to the browser or host
}

// IndexID formats an index or id for Event.ID.
func IndexID[T ~int | ~int64](v T) string {
	return strconv.FormatInt(int64(v), 10)
}

// EventBus is a simple fan-out pub/sub.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
	size int
}

// NewEventBus creates a new event bus whose subscribers buffer 16 events.
func NewEventBus() *EventBus {
	return NewEventBusSize(16)
}

// NewEventBusSize creates a bus whose subscriber channels hold size events.
func NewEventBusSize(size int) *EventBus {
	return &EventBus{subs: make(map[chan Event]struct{}), size: size}
}

// Publish sends an event to all subscribers (non-blocking).
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// subscriber too slow, skip
		}
	}
}

// Subscribe returns a buffered channel that receives events.
func (b *EventBus) Subscribe() chan Event {
	ch := make(chan Event, b.size)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}

// Subscribers reports the number of live subscriptions.
func (b *EventBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
