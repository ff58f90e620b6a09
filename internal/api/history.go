package api

import (
	"net/http"
	"strconv"

	"airwavego/pkg/store"
)

const defaultHistoryLimit = 20

// HistoryHandler serves the most recent produced announcements.
type HistoryHandler struct {
	store store.AnnouncementStore
}

// NewHistoryHandler creates the handler.
func NewHistoryHandler(s store.AnnouncementStore) *HistoryHandler {
	return &HistoryHandler{store: s}
}

// HandleHistory returns recent announcements, newest first.
// ?limit=N caps the result (default 20, max 100).
func (h *HistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = n
	}
	if limit > 100 {
		limit = 100
	}

	items, err := h.store.RecentAnnouncements(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "history_unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"announcements": items})
}
