package hub

import (
	"fmt"
	"sync"
	"sync/atomic"

	"data_logger/internal/models"
)

const subscriberBuffer = 1024

// Item kinds.
const (
	KindReading = "reading"
	KindEvent   = "event"
)

// Item is one line of the display panel.
type Item struct {
	Kind    string               `json:"type"`
	Text    string               `json:"text"`
	Reading *models.Reading      `json:"reading,omitempty"`
	Event   *models.SessionEvent `json:"event,omitempty"`
}

// ReadingItem renders a reading the way the display panel shows it.
func ReadingItem(r models.Reading) Item {
	return Item{
		Kind:    KindReading,
		Text:    fmt.Sprintf("Distance: %s cm, Command: %s", r.Distance, r.Command),
		Reading: &r,
	}
}

// EventItem wraps a journal event; its description is the display text.
func EventItem(e models.SessionEvent) Item {
	return Item{Kind: KindEvent, Text: e.Description, Event: &e}
}

// Hub fans display items out to every subscriber. Publish never blocks:
// a subscriber whose buffer is full misses the item.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int]chan Item
	nextID      int
	closed      bool
	dropped     atomic.Int64
}

// New returns an empty Hub.
func New() *Hub {
	return &Hub{subscribers: make(map[int]chan Item)}
}

// Subscribe returns a buffered channel receiving every published item and
// a function that detaches it. The channel is closed on detach or Close.
func (h *Hub) Subscribe() (<-chan Item, func()) {
	ch := make(chan Item, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subscribers[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subscribers[id]; ok {
				delete(h.subscribers, id)
				close(c)
			}
		})
	}
}

// Publish delivers item to all current subscribers.
func (h *Hub) Publish(item Item) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- item:
		default:
			h.dropped.Add(1)
		}
	}
}

// Dropped returns the number of items lost to slow subscribers.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Subscribers returns the number of attached subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close detaches and closes every subscriber. Later Subscribe calls get a
// closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, id)
	}
}
