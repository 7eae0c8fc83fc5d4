package tasks

import "time"

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Task is the authoritative record as stored. Deadline and Reminder are
// optional absolute instants; nil means "no deadline" / "no reminder".
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Deadline    *time.Time `json:"deadline"`
	Reminder    *time.Time `json:"reminder"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Category    *Category  `json:"category"`
}

// CategoryName resolves the display name, "Uncategorized" when absent.
func (t Task) CategoryName() string {
	if t.Category == nil || t.Category.Name == "" {
		return "Uncategorized"
	}
	return t.Category.Name
}

// Input is the writable field set for create and update.
type Input struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Deadline    *time.Time `json:"deadline"`
	Reminder    *time.Time `json:"reminder"`
}
