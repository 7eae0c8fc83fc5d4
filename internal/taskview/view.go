package taskview

import (
	"math"
	"sort"
	"strings"
	"time"

	"taskdesk-backend/internal/tasks"
)

type DeadlineBucket string

const (
	DeadlineAll      DeadlineBucket = "all"
	DeadlineOverdue  DeadlineBucket = "overdue"
	DeadlineToday    DeadlineBucket = "today"
	DeadlineUpcoming DeadlineBucket = "upcoming"
	DeadlineNone     DeadlineBucket = "no-deadline"
)

type CompletionBucket string

const (
	CompletionAll       CompletionBucket = "all"
	CompletionCompleted CompletionBucket = "completed"
	CompletionPending   CompletionBucket = "pending"
)

// Filters are ANDed. An empty category set means no category filtering;
// "Uncategorized" is a valid member matching tasks without a category.
type Filters struct {
	Categories []string         `json:"categories"`
	Deadline   DeadlineBucket   `json:"deadline"`
	Completion CompletionBucket `json:"completion"`
}

type Column string

const (
	ColumnTitle       Column = "title"
	ColumnDescription Column = "description"
	ColumnCategory    Column = "category"
	ColumnDeadline    Column = "deadline"
	ColumnCompleted   Column = "completed"
	ColumnCreatedAt   Column = "created_at"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type SortState struct {
	Column    Column    `json:"column"`
	Direction Direction `json:"direction"`
}

func DefaultSort() SortState {
	return SortState{Column: ColumnCreatedAt, Direction: Desc}
}

// Toggle returns the sort state after selecting col: a new column sorts
// ascending, reselecting the current column flips direction.
func (s SortState) Toggle(col Column) SortState {
	if s.Column == col && s.Direction == Asc {
		return SortState{Column: col, Direction: Desc}
	}
	return SortState{Column: col, Direction: Asc}
}

// View filters and orders the task set for display. Pure: the input slice
// is not modified, and identical inputs yield identical output.
func View(list []tasks.Task, f Filters, s SortState, now time.Time) []tasks.Task {
	out := make([]tasks.Task, 0, len(list))
	for _, t := range list {
		if Matches(t, f, now) {
			out = append(out, t)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j], s)
	})
	return out
}

func Matches(t tasks.Task, f Filters, now time.Time) bool {
	if len(f.Categories) > 0 {
		name := t.CategoryName()
		found := false
		for _, c := range f.Categories {
			if c == name {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	switch f.Deadline {
	case DeadlineOverdue:
		if t.Deadline == nil || !t.Deadline.Before(now) {
			return false
		}
	case DeadlineToday:
		if t.Deadline == nil || !sameDate(*t.Deadline, now) {
			return false
		}
	case DeadlineUpcoming:
		if t.Deadline == nil || !t.Deadline.After(now) {
			return false
		}
	case DeadlineNone:
		if t.Deadline != nil {
			return false
		}
	}

	switch f.Completion {
	case CompletionCompleted:
		if !t.Completed {
			return false
		}
	case CompletionPending:
		if t.Completed {
			return false
		}
	}

	return true
}

// sortValue stringifies a column for comparison. Timestamps render as
// RFC3339 so lexical order matches chronological order. The second return
// marks an absent value, which sorts last regardless of direction.
func sortValue(t tasks.Task, col Column) (string, bool) {
	switch col {
	case ColumnTitle:
		return strings.ToLower(t.Title), false
	case ColumnDescription:
		return strings.ToLower(t.Description), false
	case ColumnCategory:
		return strings.ToLower(t.CategoryName()), false
	case ColumnDeadline:
		if t.Deadline == nil {
			return "", true
		}
		return t.Deadline.UTC().Format(time.RFC3339), false
	case ColumnCompleted:
		if t.Completed {
			return "true", false
		}
		return "false", false
	default: // created_at
		return t.CreatedAt.UTC().Format(time.RFC3339), false
	}
}

func less(a, b tasks.Task, s SortState) bool {
	av, aNull := sortValue(a, s.Column)
	bv, bNull := sortValue(b, s.Column)

	// absent values always after present ones
	if aNull || bNull {
		return !aNull && bNull
	}

	cmp := strings.Compare(av, bv)
	if s.Direction == Desc {
		cmp = -cmp
	}
	return cmp < 0
}

type DeadlineStatus string

const (
	StatusNone    DeadlineStatus = "none"
	StatusOverdue DeadlineStatus = "overdue"
	StatusToday   DeadlineStatus = "today"
	StatusSoon    DeadlineStatus = "soon"
	StatusFuture  DeadlineStatus = "future"
)

// Status classifies a deadline for row styling. Whole-day ceiling
// difference, not sub-day precision: a deadline earlier today still
// counts as "today", not "overdue".
func Status(deadline *time.Time, now time.Time) DeadlineStatus {
	if deadline == nil {
		return StatusNone
	}
	days := int(math.Ceil(deadline.Sub(now).Hours() / 24))
	switch {
	case days < 0:
		return StatusOverdue
	case days == 0:
		return StatusToday
	case days <= 3:
		return StatusSoon
	default:
		return StatusFuture
	}
}

// UniqueCategories lists the distinct resolved category names present in
// the task set, sorted; tasks without a category are excluded (the
// "Uncategorized" option is a fixed UI entry, not data-driven).
func UniqueCategories(list []tasks.Task) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range list {
		if t.Category == nil || t.Category.Name == "" {
			continue
		}
		if _, ok := seen[t.Category.Name]; ok {
			continue
		}
		seen[t.Category.Name] = struct{}{}
		out = append(out, t.Category.Name)
	}
	sort.Strings(out)
	return out
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
