package tasks

import (
	"context"
	"errors"
	"log"
	"sync"

	"taskdesk-backend/internal/feed"
)

// Fetcher is the read-side needed to resolve a change event into a full
// task record (with its category joined). *SQLStore satisfies it.
type Fetcher interface {
	GetByID(ctx context.Context, userID, taskID string) (Task, error)
}

// Snapshot holds one user's authoritative task list between change events.
// Readers get an immutable copy per tick; writers replace wholesale or
// merge one event at a time. The server-confirmed record always wins over
// whatever a reader was holding.
type Snapshot struct {
	mu     sync.RWMutex
	userID string
	tasks  []Task
}

func NewSnapshot(userID string, initial []Task) *Snapshot {
	s := &Snapshot{userID: userID}
	s.tasks = append(s.tasks, initial...)
	return s
}

func (s *Snapshot) UserID() string { return s.userID }

// Tasks returns a copy of the current list, newest first.
func (s *Snapshot) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Snapshot) Replace(list []Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks[:0:0], list...)
}

// Apply merges one change event. Inserts and updates refetch the full
// record so the category join stays resolved; a failed fetch leaves the
// last known snapshot in place rather than corrupting it.
func (s *Snapshot) Apply(ctx context.Context, ev feed.Event, f Fetcher) {
	switch ev.Kind {
	case feed.KindInsert:
		if s.has(ev.TaskID) {
			return
		}
		t, err := f.GetByID(ctx, s.userID, ev.TaskID)
		if err != nil {
			s.logFetchErr(ev, err)
			return
		}
		s.mu.Lock()
		s.tasks = append([]Task{t}, s.tasks...)
		s.mu.Unlock()

	case feed.KindUpdate:
		t, err := f.GetByID(ctx, s.userID, ev.TaskID)
		if err != nil {
			s.logFetchErr(ev, err)
			return
		}
		s.mu.Lock()
		for i := range s.tasks {
			if s.tasks[i].ID == t.ID {
				s.tasks[i] = t
				break
			}
		}
		s.mu.Unlock()

	case feed.KindDelete:
		s.mu.Lock()
		for i := range s.tasks {
			if s.tasks[i].ID == ev.TaskID {
				s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	}
}

// Follow consumes events until the channel closes or ctx is cancelled.
func (s *Snapshot) Follow(ctx context.Context, ch <-chan feed.Event, f Fetcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			s.Apply(ctx, ev, f)
		}
	}
}

func (s *Snapshot) has(taskID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.tasks {
		if s.tasks[i].ID == taskID {
			return true
		}
	}
	return false
}

func (s *Snapshot) logFetchErr(ev feed.Event, err error) {
	if errors.Is(err, ErrNotFound) {
		// deleted between event and fetch; the delete event will follow
		return
	}
	log.Printf("[WARN] snapshot merge %s task=%s: %v", ev.Kind, ev.TaskID, err)
}
