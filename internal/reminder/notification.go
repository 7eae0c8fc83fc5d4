package reminder

import (
	"sync"
	"time"
)

// Notification is ephemeral and in-memory only; it is never persisted.
// ID is unique per instance, not per task: a task may be notified more
// than once over its lifetime.
type Notification struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	IsRead    bool      `json:"is_read"`
}

// NotificationStore keeps live notifications in insertion order, oldest
// first. Order is stable across reads.
type NotificationStore struct {
	mu    sync.Mutex
	items []Notification
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

func (s *NotificationStore) Append(ns ...Notification) {
	if len(ns) == 0 {
		return
	}
	s.mu.Lock()
	s.items = append(s.items, ns...)
	s.mu.Unlock()
}

// All returns a copy in stored order.
func (s *NotificationStore) All() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// MarkAllRead is the dropdown-open side effect: every current
// notification becomes read. Returns the list for display.
func (s *NotificationStore) MarkAllRead() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].IsRead = true
	}
	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Dismiss removes exactly one notification and reports the task it
// belonged to, so the caller can re-arm that task.
func (s *NotificationStore) Dismiss(id string) (taskID string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			taskID = s.items[i].TaskID
			s.items = append(s.items[:i], s.items[i+1:]...)
			return taskID, true
		}
	}
	return "", false
}

// ClearAll empties the collection. It does not re-arm any task.
func (s *NotificationStore) ClearAll() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

func (s *NotificationStore) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.items {
		if !s.items[i].IsRead {
			n++
		}
	}
	return n
}

// HasLive reports whether a non-dismissed notification exists for taskID.
func (s *NotificationStore) HasLive(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].TaskID == taskID {
			return true
		}
	}
	return false
}

func (s *NotificationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
