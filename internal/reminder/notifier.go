package reminder

import "log"

type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// Notifier abstracts the OS-level notification capability so non-browser
// targets can log or no-op.
type Notifier interface {
	RequestPermission() Permission
	Notify(title, body string)
}

// LogNotifier writes notifications to the process log.
type LogNotifier struct{}

func (LogNotifier) RequestPermission() Permission { return PermissionGranted }

func (LogNotifier) Notify(title, body string) {
	log.Printf("notify: %s: %s", title, body)
}

// NoopNotifier discards everything.
type NoopNotifier struct{}

func (NoopNotifier) RequestPermission() Permission { return PermissionDenied }
func (NoopNotifier) Notify(title, body string)     {}
