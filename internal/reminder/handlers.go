package reminder

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"taskdesk-backend/internal/analytics"
	"taskdesk-backend/internal/auth"
)

// Handler serves the per-user notification API on top of the registry.
type Handler struct {
	Registry *Registry
	Events   *sql.DB
}

func NewHandler(reg *Registry, events *sql.DB) *Handler {
	return &Handler{Registry: reg, Events: events}
}

// Badge: GET /notifications/badge
// Unread count and the upcoming indicator, without marking anything read.
// The two are independent signals: the badge reflects fired, unread
// notifications; upcoming reflects reminders still ahead of now.
func (h *Handler) Badge(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	eng := h.Registry.Get(uid)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"unread_count": eng.UnreadCount(),
		"upcoming":     eng.HasUpcoming(time.Now()),
	})
}

// Open: GET /notifications
// The dropdown-open operation: marks all read, returns the full list.
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	eng := h.Registry.Get(uid)

	list := eng.Open()
	if list == nil {
		list = []Notification{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"notifications": list,
		"upcoming":      eng.HasUpcoming(time.Now()),
		"current_time":  time.Now(),
	})
}

// Dismiss: DELETE /notifications/dismiss
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
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
		http.Error(w, "notification id is required", http.StatusBadRequest)
		return
	}

	eng := h.Registry.Get(uid)
	if !eng.Dismiss(body.ID) {
		http.Error(w, "notification not found", http.StatusNotFound)
		return
	}

	env := analytics.FromRequest(r)
	env.UserID = uid
	_ = analytics.Log(r.Context(), h.Events, env, "notification_dismissed", map[string]any{
		"notification_id": body.ID,
	}, analytics.SourceEventKeyFromRequest(r))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"message": "dismissed"})
}

// Clear: DELETE /notifications/clear
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	h.Registry.Get(uid).ClearAll()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"message": "cleared"})
}
