package tasks

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"taskdesk-backend/internal/analytics"
	"taskdesk-backend/internal/auth"
	"taskdesk-backend/internal/feed"
)

// Handler serves the task CRUD API. Events is optional; when nil no
// analytics rows are written. Hub is optional for the same reason.
type Handler struct {
	Store  Store
	Hub    *feed.Hub
	Events *sql.DB
}

func NewHandler(store Store, hub *feed.Hub, events *sql.DB) *Handler {
	return &Handler{Store: store, Hub: hub, Events: events}
}

// List: GET /tasks
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	list, err := h.Store.ListByUser(r.Context(), uid)
	if err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []Task{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Create: POST /tasks
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		http.Error(w, "task title is required", http.StatusBadRequest)
		return
	}
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)

	t, err := h.Store.Create(r.Context(), uid, in)
	if err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.publish(feed.Event{UserID: uid, Kind: feed.KindInsert, TaskID: t.ID})

	env := analytics.FromRequest(r)
	env.UserID = uid
	_ = analytics.Log(r.Context(), h.Events, env, "task_created", map[string]any{
		"task_id":      t.ID,
		"has_deadline": t.Deadline != nil,
		"has_reminder": t.Reminder != nil,
		"has_category": t.Category != nil,
	}, analytics.SourceEventKeyFromRequest(r))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message": "Task created successfully",
		"task":    t,
	})
}

type updateRequest struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
	Input
}

// Update: PUT /tasks/update
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var body updateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if body.ID == "" {
		http.Error(w, "task id is required", http.StatusBadRequest)
		return
	}

	body.Title = strings.TrimSpace(body.Title)
	if body.Title == "" {
		http.Error(w, "task title is required", http.StatusBadRequest)
		return
	}
	body.Description = strings.TrimSpace(body.Description)
	body.Category = strings.TrimSpace(body.Category)

	var prev Task
	if h.Events != nil {
		prev, _ = h.Store.GetByID(r.Context(), uid, body.ID)
	}

	t, err := h.Store.Update(r.Context(), uid, body.ID, body.Input, body.Completed)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.publish(feed.Event{UserID: uid, Kind: feed.KindUpdate, TaskID: t.ID})

	env := analytics.FromRequest(r)
	env.UserID = uid
	_ = analytics.Log(r.Context(), h.Events, env, "task_updated", map[string]any{
		"task_id": t.ID,
	}, analytics.SourceEventKeyFromRequest(r))
	if !prev.Completed && t.Completed {
		_ = analytics.Log(r.Context(), h.Events, env, "task_completed", map[string]any{
			"task_id": t.ID,
		}, "")
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message": "Task updated successfully",
		"task":    t,
	})
}

// Delete: DELETE /tasks/delete
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if body.ID == "" {
		http.Error(w, "task id is required", http.StatusBadRequest)
		return
	}

	err := h.Store.Delete(r.Context(), uid, body.ID)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.publish(feed.Event{UserID: uid, Kind: feed.KindDelete, TaskID: body.ID})

	env := analytics.FromRequest(r)
	env.UserID = uid
	_ = analytics.Log(r.Context(), h.Events, env, "task_deleted", map[string]any{
		"task_id": body.ID,
	}, analytics.SourceEventKeyFromRequest(r))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message": "Task deleted successfully",
	})
}

func (h *Handler) publish(ev feed.Event) {
	if h.Hub != nil {
		h.Hub.Publish(ev)
	}
}
