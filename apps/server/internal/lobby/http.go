package lobby

import (
	"encoding/json"
	"net/http"
	"strings"

	"npcsim/apps/server/internal/auth"
	"npcsim/content"
)

// HTTPHandler exposes the world list and the loaded content. Creating a
// world needs a session unless the handler was built without an auth service.
type HTTPHandler struct {
	lobby       *Lobby
	authService auth.Service
}

type createRequest struct {
	Name string `json:"name"`
}

type contentResponse struct {
	Actions  []string           `json:"actions"`
	Personas []*content.Persona `json:"personas"`
}

func NewHTTPHandler(l *Lobby, authService auth.Service) *HTTPHandler {
	return &HTTPHandler{lobby: l, authService: authService}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/worlds", h.handleWorlds)
	mux.HandleFunc("/api/worlds/", h.handleWorld)
	mux.HandleFunc("/api/content", h.handleContent)
}

func (h *HTTPHandler) handleWorlds(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		auth.WriteJSON(w, http.StatusOK, h.lobby.List())
	case http.MethodPost:
		if h.authService != nil {
			if _, ok := auth.Authenticate(h.authService, r); !ok {
				auth.WriteError(w, http.StatusUnauthorized, "invalid session token")
				return
			}
		}
		var req createRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				auth.WriteError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}
		wld, err := h.lobby.Create(strings.TrimSpace(req.Name))
		if err != nil {
			auth.WriteError(w, http.StatusInternalServerError, "create failed")
			return
		}
		auth.WriteJSON(w, http.StatusCreated, wld.Info())
	default:
		auth.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *HTTPHandler) handleWorld(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		auth.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/worlds/"), "/")
	wld := h.lobby.Get(id)
	if id == "" || wld == nil {
		auth.WriteError(w, http.StatusNotFound, "world not found")
		return
	}
	auth.WriteJSON(w, http.StatusOK, wld.Info())
}

func (h *HTTPHandler) handleContent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		auth.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	auth.WriteJSON(w, http.StatusOK, contentResponse{
		Actions:  h.lobby.Catalog().IDs(),
		Personas: h.lobby.Personas().All(),
	})
}
