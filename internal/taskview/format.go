package taskview

import (
	"fmt"
	"math"
	"time"
)

// FormatDate renders a timestamp the way the table shows it, "-" when
// absent.
func FormatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("Jan 2, 2006 at 3:04 PM")
}

// FormatTimeUntil renders the distance to a reminder in whole minutes.
func FormatTimeUntil(reminder *time.Time, now time.Time) string {
	if reminder == nil {
		return "No reminder set"
	}

	minutes := int(math.Floor(reminder.Sub(now).Minutes()))
	switch {
	case minutes <= 0:
		return fmt.Sprintf("Reminder passed %d minutes ago", -minutes)
	case minutes < 60:
		return fmt.Sprintf("%d minutes until reminder", minutes)
	default:
		return fmt.Sprintf("%dh %dm until reminder", minutes/60, minutes%60)
	}
}
