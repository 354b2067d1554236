// Package sse fans workflow task events out to the browser tabs of the user they concern.
package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// BufferSize is how many undelivered events a subscriber may hold before new ones are dropped.
const BufferSize = 16

// Event is one server-sent message. ID is assigned by the hub on publish.
type Event struct {
	ID     uint64
	UserID string
	Event  string
	Data   interface{}
}

// WriteTo frames the event in the text/event-stream format.
func (e Event) WriteTo(w io.Writer) (int64, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return 0, fmt.Errorf("encode %s event: %w", e.Event, err)
	}
	var n int
	if e.ID > 0 {
		n, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", e.ID, e.Event, data)
	} else {
		n, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Event, data)
	}
	return int64(n), err
}

// Hub keeps the open streams per user.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	seq         atomic.Uint64
	dropped     atomic.Uint64
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a stream for userID. The returned cleanup closes the channel and must be called once.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, BufferSize)

	h.mu.Lock()
	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan Event]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[userID], ch)
			if len(h.subscribers[userID]) == 0 {
				delete(h.subscribers, userID)
			}
			close(ch)
		})
	}
	return ch, cleanup
}

// Publish delivers event to every stream userID has open and reports how many received it.
// Slow subscribers never block the publisher; their copy is dropped.
func (h *Hub) Publish(userID string, event Event) int {
	event.UserID = userID
	event.ID = h.seq.Add(1)

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ch := range h.subscribers[userID] {
		select {
		case ch <- event:
			delivered++
		default:
			h.dropped.Add(1)
		}
	}
	return delivered
}

// Stats is a point-in-time view used by the health endpoint.
type Stats struct {
	Users   int    `json:"users"`
	Streams int    `json:"streams"`
	Dropped uint64 `json:"dropped"`
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s := Stats{Users: len(h.subscribers), Dropped: h.dropped.Load()}
	for _, subs := range h.subscribers {
		s.Streams += len(subs)
	}
	return s
}
