package reminder

import (
	"time"

	"taskdesk-backend/internal/tasks"
)

// HasUpcoming reports whether any incomplete task has a reminder still in
// the future but within window of now. This drives the amber "upcoming"
// indicator and is independent of the notification store.
func HasUpcoming(list []tasks.Task, now time.Time, window time.Duration) bool {
	for _, t := range list {
		if t.Completed || t.Reminder == nil {
			continue
		}
		d := t.Reminder.Sub(now)
		if d > 0 && d <= window {
			return true
		}
	}
	return false
}
