package sse

import (
	"sync"
)

// Event represents an SSE event to be sent to the consoles watching a site
type Event struct {
	SiteID string
	Event  string
	Data   interface{}
}

// Hub manages SSE subscribers and event broadcasting, keyed by site
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber for a site and returns the event channel and cleanup function
func (h *Hub) Subscribe(siteID string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)

	if h.subscribers[siteID] == nil {
		h.subscribers[siteID] = make(map[chan Event]struct{})
	}
	h.subscribers[siteID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[siteID], ch)
			close(ch)
			if len(h.subscribers[siteID]) == 0 {
				delete(h.subscribers, siteID)
			}
		})
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers of a site
func (h *Hub) Publish(siteID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event.SiteID = siteID
	if subs, ok := h.subscribers[siteID]; ok {
		for ch := range subs {
			select {
			case ch <- event:
			default:
				// Skip if channel is full (non-blocking to prevent deadlock)
			}
		}
	}
}

// SubscriberCount returns the number of active subscribers for a site
func (h *Hub) SubscriberCount(siteID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.subscribers[siteID]; ok {
		return len(subs)
	}
	return 0
}

// TotalSubscribers returns the total number of active subscribers across all sites
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
