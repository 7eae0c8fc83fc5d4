package reminder

import (
	"strings"
	"testing"
	"time"

	"taskdesk-backend/internal/tasks"
)

func ts(t time.Time) *time.Time { return &t }

func task(id, title string, completed bool, reminder *time.Time) tasks.Task {
	return tasks.Task{ID: id, Title: title, Completed: completed, Reminder: reminder}
}

func TestEvaluate_CompletedNeverNotifies(t *testing.T) {
	now := time.Now()
	e := NewEvaluator(time.Hour)

	list := []tasks.Task{
		task("d", "D", true, ts(now.Add(-5*time.Minute))),
		task("d2", "D2", true, ts(now.Add(-59*time.Minute))),
	}

	for i := 0; i < 3; i++ {
		if got := e.Evaluate(list, now, nil); len(got) != 0 {
			t.Fatalf("tick %d: expected no notifications for completed tasks, got %d", i, len(got))
		}
		now = now.Add(10 * time.Second)
	}
}

func TestEvaluate_NoReminderNeverNotifies(t *testing.T) {
	now := time.Now()
	e := NewEvaluator(time.Hour)

	got := e.Evaluate([]tasks.Task{task("c", "C", false, nil)}, now, nil)
	if len(got) != 0 {
		t.Fatalf("expected no notifications, got %d", len(got))
	}
}

func TestEvaluate_NotYetCrossed(t *testing.T) {
	now := time.Now()
	e := NewEvaluator(time.Hour)

	got := e.Evaluate([]tasks.Task{task("b", "B", false, ts(now.Add(30*time.Minute)))}, now, nil)
	if len(got) != 0 {
		t.Fatalf("expected no notifications for future reminder, got %d", len(got))
	}
}

func TestEvaluate_CrossedFiresOnceWithTitleInMessage(t *testing.T) {
	now := time.Now()
	e := NewEvaluator(time.Hour)
	list := []tasks.Task{task("a", "A", false, ts(now.Add(-5 * time.Minute)))}

	got := e.Evaluate(list, now, nil)
	if len(got) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(got))
	}
	if got[0].TaskID != "a" {
		t.Errorf("expected task id a, got %s", got[0].TaskID)
	}
	if !strings.Contains(got[0].Message, "A") {
		t.Errorf("expected message to contain task title, got %q", got[0].Message)
	}
	if got[0].IsRead {
		t.Error("new notification must be unread")
	}
	if !e.Reminded("a") {
		t.Error("expected task a in reminded set after firing")
	}
}

func TestEvaluate_IdempotentAcrossTicks(t *testing.T) {
	now := time.Now()
	e := NewEvaluator(time.Hour)
	list := []tasks.Task{task("a", "A", false, ts(now.Add(-5 * time.Minute)))}

	first := e.Evaluate(list, now, nil)
	if len(first) != 1 {
		t.Fatalf("expected one notification on first tick, got %d", len(first))
	}

	// identical inputs, immediate second call
	second := e.Evaluate(list, now, nil)
	if len(second) != 0 {
		t.Fatalf("expected zero notifications on second tick, got %d", len(second))
	}

	// repeated ticks as time advances, no user action
	for i := 1; i <= 5; i++ {
		tick := now.Add(time.Duration(i) * 10 * time.Second)
		e.Rearm(list, tick)
		if got := e.Evaluate(list, tick, nil); len(got) != 0 {
			t.Fatalf("tick +%ds: unexpected refire", i*10)
		}
	}
}

func TestEvaluate_LiveNotificationBlocksRefire(t *testing.T) {
	now := time.Now()
	e := NewEvaluator(time.Hour)
	list := []tasks.Task{task("a", "A", false, ts(now.Add(-5 * time.Minute)))}

	// even with an empty reminded set, an existing live notification
	// for the task suppresses a duplicate
	got := e.Evaluate(list, now, func(taskID string) bool { return taskID == "a" })
	if len(got) != 0 {
		t.Fatalf("expected live notification to suppress firing, got %d", len(got))
	}
}

func TestEvaluate_DeadlineInMessage(t *testing.T) {
	now := time.Now()
	deadline := time.Date(2026, time.September, 1, 15, 30, 0, 0, time.UTC)
	e := NewEvaluator(time.Hour)

	list := []tasks.Task{{
		ID:       "a",
		Title:    "Ship report",
		Reminder: ts(now.Add(-time.Minute)),
		Deadline: &deadline,
	}}

	got := e.Evaluate(list, now, nil)
	if len(got) != 1 {
		t.Fatalf("expected one notification, got %d", len(got))
	}
	if !strings.Contains(got[0].Message, "scheduled for") {
		t.Errorf("expected deadline in message, got %q", got[0].Message)
	}
	if !strings.Contains(got[0].Message, "Sep 1, 2026") {
		t.Errorf("expected formatted deadline date, got %q", got[0].Message)
	}
}

func TestEvaluate_StaleCrossingDoesNotFire(t *testing.T) {
	now := time.Now()
	e := NewEvaluator(time.Hour)

	// reminder crossed two hours ago, older than the re-arm window
	list := []tasks.Task{task("a", "A", false, ts(now.Add(-2 * time.Hour)))}
	if got := e.Evaluate(list, now, nil); len(got) != 0 {
		t.Fatalf("expected stale crossing not to fire, got %d", len(got))
	}
}

func TestRearm_ExpiryDoesNotRefire(t *testing.T) {
	start := time.Now()
	e := NewEvaluator(time.Hour)
	list := []tasks.Task{task("a", "A", false, ts(start))}

	if got := e.Evaluate(list, start, nil); len(got) != 1 {
		t.Fatalf("expected initial fire, got %d", len(got))
	}

	// crossing ages past the expiry; set entry is dropped for hygiene
	later := start.Add(2 * time.Hour)
	e.Rearm(list, later)
	if e.Reminded("a") {
		t.Error("expected expired entry to be dropped from reminded set")
	}

	// but the unchanged reminder must not fire again
	if got := e.Evaluate(list, later, nil); len(got) != 0 {
		t.Fatalf("expiry alone must not refire, got %d", len(got))
	}
}

func TestRearm_DropsCompletedDeletedAndCleared(t *testing.T) {
	now := time.Now()
	e := NewEvaluator(time.Hour)
	r := ts(now.Add(-time.Minute))

	list := []tasks.Task{
		task("done", "done", false, r),
		task("gone", "gone", false, r),
		task("cleared", "cleared", false, r),
		task("kept", "kept", false, r),
	}
	if got := e.Evaluate(list, now, nil); len(got) != 4 {
		t.Fatalf("expected 4 fires, got %d", len(got))
	}

	next := []tasks.Task{
		task("done", "done", true, r),          // completed
		task("cleared", "cleared", false, nil), // reminder removed
		task("kept", "kept", false, r),
		// "gone" deleted
	}
	e.Rearm(next, now.Add(10*time.Second))

	for _, id := range []string{"done", "gone", "cleared"} {
		if e.Reminded(id) {
			t.Errorf("expected %s dropped from reminded set", id)
		}
	}
	if !e.Reminded("kept") {
		t.Error("expected kept to stay in reminded set")
	}
}

func TestEvaluate_ChangedReminderRefires(t *testing.T) {
	now := time.Now()
	e := NewEvaluator(time.Hour)

	first := []tasks.Task{task("a", "A", false, ts(now.Add(-time.Minute)))}
	if got := e.Evaluate(first, now, nil); len(got) != 1 {
		t.Fatalf("expected initial fire, got %d", len(got))
	}

	// user moves the reminder to a new instant; once crossed, it fires again
	newReminder := now.Add(5 * time.Minute)
	moved := []tasks.Task{task("a", "A", false, &newReminder)}
	later := now.Add(6 * time.Minute)

	e.Rearm(moved, later)
	got := e.Evaluate(moved, later, nil)
	if len(got) != 1 {
		t.Fatalf("expected refire after reminder change, got %d", len(got))
	}
}

func TestDismissed_RearmsBeforeExpiry(t *testing.T) {
	now := time.Now()
	e := NewEvaluator(time.Hour)
	list := []tasks.Task{task("a", "A", false, ts(now.Add(-time.Minute)))}

	if got := e.Evaluate(list, now, nil); len(got) != 1 {
		t.Fatalf("expected initial fire, got %d", len(got))
	}

	// dismissal removes the set entry; with the notification gone and the
	// crossing still fresh, the next tick notifies again
	e.Dismissed("a")
	if e.Reminded("a") {
		t.Fatal("expected dismissal to drop the reminded-set entry")
	}

	tick := now.Add(10 * time.Second)
	e.Rearm(list, tick)
	got := e.Evaluate(list, tick, nil)
	if len(got) != 1 {
		t.Fatalf("expected refire after dismissal within the re-arm window, got %d", len(got))
	}
}

func TestExpired_Predicate(t *testing.T) {
	now := time.Now()

	fresh := Entry{ReminderAt: now.Add(-30 * time.Minute)}
	if Expired(fresh, now, time.Hour) {
		t.Error("entry 30m old must not be expired with 1h window")
	}

	old := Entry{ReminderAt: now.Add(-61 * time.Minute)}
	if !Expired(old, now, time.Hour) {
		t.Error("entry 61m old must be expired with 1h window")
	}
}

func TestScenario_MixedTaskSet(t *testing.T) {
	now := time.Now()
	e := NewEvaluator(time.Hour)

	list := []tasks.Task{
		task("a", "A", false, ts(now.Add(-5*time.Minute))), // fires
		task("b", "B", false, ts(now.Add(30*time.Minute))), // upcoming only
		task("c", "C", false, nil),                         // never
		task("d", "D", true, ts(now.Add(-5*time.Minute))),  // completed, never
	}

	got := e.Evaluate(list, now, nil)
	if len(got) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(got))
	}
	if got[0].TaskID != "a" || !strings.Contains(got[0].Message, "A") {
		t.Errorf("expected notification for A, got %+v", got[0])
	}

	if !HasUpcoming(list, now, time.Hour) {
		t.Error("expected upcoming indicator for B (30m out)")
	}
}
