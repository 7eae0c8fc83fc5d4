package reminder

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskdesk-backend/internal/tasks"
)

// Entry records one reminder crossing that has been notified: which
// reminder instant fired and when. The reminded set maps task id to its
// entry; at most one entry per task.
type Entry struct {
	ReminderAt time.Time
	NotifiedAt time.Time
}

// Expired reports whether an entry's crossing is older than rearmAfter.
// Expiry bounds the set; it does not by itself make a crossing fire
// again (see Evaluate's freshness check).
func Expired(e Entry, now time.Time, rearmAfter time.Duration) bool {
	return now.Sub(e.ReminderAt) > rearmAfter
}

// Evaluator decides which tasks have newly crossed their reminder
// threshold. Not safe for concurrent use; the engine serializes ticks.
type Evaluator struct {
	rearmAfter time.Duration
	reminded   map[string]Entry
}

func NewEvaluator(rearmAfter time.Duration) *Evaluator {
	return &Evaluator{
		rearmAfter: rearmAfter,
		reminded:   make(map[string]Entry),
	}
}

// Evaluate walks the task set and emits one notification per newly
// crossed reminder. hasLive reports whether a live notification already
// exists for a task; together with the reminded set it guarantees at
// most one live notification per task per crossing.
//
// A crossing only fires while it is fresh (within rearmAfter of the
// reminder instant). That keeps expiry from re-firing a stale crossing:
// once the set entry ages out the crossing is too old to fire again,
// and re-notification requires the reminder timestamp to change.
func (e *Evaluator) Evaluate(list []tasks.Task, now time.Time, hasLive func(taskID string) bool) []Notification {
	var out []Notification

	for _, t := range list {
		if t.Completed || t.Reminder == nil {
			continue
		}
		reminderAt := *t.Reminder
		if now.Before(reminderAt) {
			continue
		}
		if now.Sub(reminderAt) > e.rearmAfter {
			// stale crossing
			continue
		}
		if entry, ok := e.reminded[t.ID]; ok && entry.ReminderAt.Equal(reminderAt) {
			continue
		}
		if hasLive != nil && hasLive(t.ID) {
			continue
		}

		out = append(out, Notification{
			ID:        uuid.NewString(),
			TaskID:    t.ID,
			Title:     t.Title,
			Message:   Message(t),
			Timestamp: now,
		})
		e.reminded[t.ID] = Entry{ReminderAt: reminderAt, NotifiedAt: now}
	}

	return out
}

// Rearm drops reminded-set entries whose suppression no longer applies:
// the task is gone, completed, lost its reminder, moved its reminder to
// a different instant, or the crossing aged past rearmAfter.
func (e *Evaluator) Rearm(list []tasks.Task, now time.Time) {
	byID := make(map[string]tasks.Task, len(list))
	for _, t := range list {
		byID[t.ID] = t
	}

	for id, entry := range e.reminded {
		t, ok := byID[id]
		switch {
		case !ok:
			delete(e.reminded, id)
		case t.Completed:
			delete(e.reminded, id)
		case t.Reminder == nil:
			delete(e.reminded, id)
		case !t.Reminder.Equal(entry.ReminderAt):
			delete(e.reminded, id)
		case Expired(entry, now, e.rearmAfter):
			delete(e.reminded, id)
		}
	}
}

// Dismissed re-arms a task after its notification was dismissed by the
// user, allowing a fresh crossing to notify again before expiry.
func (e *Evaluator) Dismissed(taskID string) {
	delete(e.reminded, taskID)
}

// Reminded reports reminded-set membership.
func (e *Evaluator) Reminded(taskID string) bool {
	_, ok := e.reminded[taskID]
	return ok
}

// Message builds the display text: the task title, plus the deadline's
// human-readable value when one exists.
func Message(t tasks.Task) string {
	if t.Deadline != nil {
		return fmt.Sprintf("Reminder: %q - scheduled for %s", t.Title, t.Deadline.Format("Jan 2, 2006 at 3:04 PM"))
	}
	return fmt.Sprintf("Reminder: %q", t.Title)
}
