package progress

import (
	"sync"

	"github.com/ignite/mailblast/internal/dispatch"
)

// =====================================================
// In-Process Event Fan-Out
// =====================================================

// Hub broadcasts dispatch events to in-process subscribers. Publishing never
// blocks; a subscriber whose channel is full misses that event.
type Hub struct {
	mu   sync.RWMutex
	subs map[int]chan dispatch.Event
	next int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan dispatch.Event)}
}

// Publish delivers an event to every current subscriber.
func (h *Hub) Publish(e dispatch.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a listener with the given channel buffer. The returned
// cancel func must be called to release the subscription; it closes the
// channel.
func (h *Hub) Subscribe(buffer int) (<-chan dispatch.Event, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan dispatch.Event, buffer)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// SubscriberCount reports how many listeners are registered.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
