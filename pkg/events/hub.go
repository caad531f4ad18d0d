package events

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// EventHub fans events out to subscribers. Slow subscribers miss events
// instead of blocking the publisher.
type EventHub struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	buffer int
	closed bool
}

func NewEventHub(buffer int) *EventHub {
	if buffer < 1 {
		buffer = 1
	}
	return &EventHub{subs: make(map[chan Event]struct{}), buffer: buffer}
}

// Subscribe returns a channel receiving every published event. It is closed
// by Unsubscribe or Close.
func (h *EventHub) Subscribe() chan Event {
	ch := make(chan Event, h.buffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.subs[ch] = struct{}{}
	return ch
}

func (h *EventHub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Publish sends payload as JSON to all subscribers and returns how many
// received it.
func (h *EventHub) Publish(name string, payload any) int {
	if h == nil {
		return 0
	}
	b, err := json.Marshal(payload)
	if err != nil {
		logrus.WithField("event", name).Errorf("failed to marshal event: %v", err)
		return 0
	}
	msg := Event{Name: name, Data: b}

	delivered := 0
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- msg:
			delivered++
		default:
		}
	}
	return delivered
}

// Close closes all subscriptions. Later subscriptions are closed at once.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
	h.closed = true
}
