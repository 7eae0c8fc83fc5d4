package feed

import "sync"

type Kind string

const (
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// Event describes one change to a user's task collection.
type Event struct {
	UserID string `json:"-"`
	Kind   Kind   `json:"kind"`
	TaskID string `json:"task_id"`
}

const subscriberBuffer = 16

// Hub fans task change events out to per-user subscribers. A subscriber
// that falls more than subscriberBuffer events behind loses events rather
// than blocking the publisher; consumers are expected to refetch on merge.
type Hub struct {
	mu     sync.Mutex
	closed bool
	subs   map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

func (h *Hub) Subscribe(userID string) chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch
	}
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan Event]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	return ch
}

func (h *Hub) Unsubscribe(userID string, ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.subs[userID]
	if _, ok := set[ch]; !ok {
		return
	}
	delete(set, ch)
	if len(set) == 0 {
		delete(h.subs, userID)
	}
	close(ch)
}

func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[ev.UserID] {
		select {
		case ch <- ev:
		default:
			// slow subscriber, drop
		}
	}
}

// Close shuts every subscriber channel. Further Subscribe calls return a
// closed channel so late consumers terminate immediately.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for userID, set := range h.subs {
		for ch := range set {
			close(ch)
		}
		delete(h.subs, userID)
	}
}
