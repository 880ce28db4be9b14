package journal

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"npcsim/apps/server/internal/auth"
)

const runsPrefix = "/api/journal/runs/"

type HTTPHandler struct {
	auth    auth.Service
	journal Service
}

// NewHTTPHandler serves the journal to signed-in players. A nil auth service
// leaves the routes open.
func NewHTTPHandler(authService auth.Service, journal Service) *HTTPHandler {
	return &HTTPHandler{auth: authService, journal: journal}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/journal/recent", h.handleRecent)
	mux.HandleFunc(runsPrefix, h.handleRun)
}

func (h *HTTPHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		auth.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !h.authorized(r) {
		auth.WriteError(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	q := r.URL.Query()
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.journal.ListRecent(ctx, strings.TrimSpace(q.Get("world")), strings.TrimSpace(q.Get("agent")), parseLimit(q.Get("limit")))
	if err != nil {
		auth.WriteError(w, http.StatusInternalServerError, "query journal failed")
		return
	}
	auth.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *HTTPHandler) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		auth.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !h.authorized(r) {
		auth.WriteError(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	runID := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, runsPrefix))
	if runID == "" || strings.Contains(runID, "/") {
		auth.WriteError(w, http.StatusNotFound, "not found")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	items, err := h.journal.ListByRun(ctx, runID)
	if err != nil {
		auth.WriteError(w, http.StatusInternalServerError, "query run failed")
		return
	}
	if len(items) == 0 {
		auth.WriteError(w, http.StatusNotFound, "run not found")
		return
	}
	auth.WriteJSON(w, http.StatusOK, map[string]any{"run_id": runID, "items": items})
}

func (h *HTTPHandler) authorized(r *http.Request) bool {
	if h.auth == nil {
		return true
	}
	_, ok := auth.Authenticate(h.auth, r)
	return ok
}

func parseLimit(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return defaultListLimit
	}
	return clampLimit(v)
}
