package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskdesk-backend/internal/feed"
)

type fakeFetcher struct {
	byID map[string]Task
	err  error
}

func (f *fakeFetcher) GetByID(ctx context.Context, userID, taskID string) (Task, error) {
	if f.err != nil {
		return Task{}, f.err
	}
	t, ok := f.byID[taskID]
	if !ok {
		return Task{}, ErrNotFound
	}
	return t, nil
}

func TestSnapshot_InsertPrepends(t *testing.T) {
	snap := NewSnapshot("u1", []Task{{ID: "old", Title: "old"}})
	f := &fakeFetcher{byID: map[string]Task{"new": {ID: "new", Title: "new"}}}

	snap.Apply(context.Background(), feed.Event{UserID: "u1", Kind: feed.KindInsert, TaskID: "new"}, f)

	got := snap.Tasks()
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got))
	}
	if got[0].ID != "new" {
		t.Errorf("expected new task first, got %s", got[0].ID)
	}
}

func TestSnapshot_InsertIgnoresDuplicate(t *testing.T) {
	snap := NewSnapshot("u1", []Task{{ID: "a", Title: "a"}})
	f := &fakeFetcher{byID: map[string]Task{"a": {ID: "a", Title: "a-refetched"}}}

	snap.Apply(context.Background(), feed.Event{Kind: feed.KindInsert, TaskID: "a"}, f)

	got := snap.Tasks()
	if len(got) != 1 {
		t.Fatalf("expected 1 task, got %d", len(got))
	}
	if got[0].Title != "a" {
		t.Error("duplicate insert must not replace the existing record")
	}
}

func TestSnapshot_UpdateReplacesByID(t *testing.T) {
	snap := NewSnapshot("u1", []Task{
		{ID: "a", Title: "a"},
		{ID: "b", Title: "b"},
	})
	f := &fakeFetcher{byID: map[string]Task{"b": {ID: "b", Title: "b2", Completed: true}}}

	snap.Apply(context.Background(), feed.Event{Kind: feed.KindUpdate, TaskID: "b"}, f)

	got := snap.Tasks()
	if got[1].Title != "b2" || !got[1].Completed {
		t.Errorf("expected server-confirmed record to win, got %+v", got[1])
	}
	if got[0].Title != "a" {
		t.Error("unrelated task modified")
	}
}

func TestSnapshot_DeleteRemovesByID(t *testing.T) {
	snap := NewSnapshot("u1", []Task{
		{ID: "a", Title: "a"},
		{ID: "b", Title: "b"},
	})

	snap.Apply(context.Background(), feed.Event{Kind: feed.KindDelete, TaskID: "a"}, nil)

	got := snap.Tasks()
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("expected only b to remain, got %v", got)
	}
}

func TestSnapshot_FetchFailureKeepsLastKnown(t *testing.T) {
	snap := NewSnapshot("u1", []Task{{ID: "a", Title: "a"}})
	f := &fakeFetcher{err: errors.New("connection refused")}

	snap.Apply(context.Background(), feed.Event{Kind: feed.KindUpdate, TaskID: "a"}, f)
	snap.Apply(context.Background(), feed.Event{Kind: feed.KindInsert, TaskID: "b"}, f)

	got := snap.Tasks()
	if len(got) != 1 || got[0].Title != "a" {
		t.Fatalf("expected last known snapshot preserved, got %v", got)
	}
}

func TestSnapshot_TasksReturnsCopy(t *testing.T) {
	snap := NewSnapshot("u1", []Task{{ID: "a", Title: "a"}})

	got := snap.Tasks()
	got[0].Title = "mutated"

	if snap.Tasks()[0].Title != "a" {
		t.Error("reader mutation leaked into the snapshot")
	}
}

func TestSnapshot_FollowStopsOnChannelClose(t *testing.T) {
	snap := NewSnapshot("u1", nil)
	ch := make(chan feed.Event)
	done := make(chan struct{})

	go func() {
		snap.Follow(context.Background(), ch, &fakeFetcher{byID: map[string]Task{}})
		close(done)
	}()

	close(ch)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Follow did not return after channel close")
	}
}

func TestSnapshot_FollowStopsOnContextCancel(t *testing.T) {
	snap := NewSnapshot("u1", nil)
	ch := make(chan feed.Event)
	done := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		snap.Follow(ctx, ch, nil)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Follow did not return after context cancel")
	}
}
