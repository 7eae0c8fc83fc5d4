package taskview

import (
	"encoding/json"
	"net/http"
	"time"

	"taskdesk-backend/internal/auth"
	"taskdesk-backend/internal/tasks"
)

// Handler serves the filtered/sorted table view server-side, for clients
// that do not run the view engine themselves.
//
// GET /tasks/view?category=Work&category=Home&deadline=overdue&completion=pending&sort=title&dir=asc
type Handler struct {
	Store tasks.Store
}

func NewHandler(store tasks.Store) *Handler {
	return &Handler{Store: store}
}

type row struct {
	tasks.Task
	CategoryName   string         `json:"category_name"`
	DeadlineStatus DeadlineStatus `json:"deadline_status"`
}

func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	f := Filters{
		Categories: q["category"],
		Deadline:   DeadlineBucket(q.Get("deadline")),
		Completion: CompletionBucket(q.Get("completion")),
	}
	if f.Deadline == "" {
		f.Deadline = DeadlineAll
	}
	if f.Completion == "" {
		f.Completion = CompletionAll
	}

	s := DefaultSort()
	if col := q.Get("sort"); col != "" {
		s.Column = Column(col)
		s.Direction = Asc
	}
	if q.Get("dir") == string(Desc) {
		s.Direction = Desc
	}

	list, err := h.Store.ListByUser(r.Context(), uid)
	if err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	now := time.Now()
	ordered := View(list, f, s, now)

	rows := make([]row, 0, len(ordered))
	for _, t := range ordered {
		rows = append(rows, row{
			Task:           t,
			CategoryName:   t.CategoryName(),
			DeadlineStatus: Status(t.Deadline, now),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"tasks":      rows,
		"total":      len(list),
		"categories": UniqueCategories(list),
	})
}
