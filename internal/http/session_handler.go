package http

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/go_storefront/internal/service"
	"github.com/fjod/go_storefront/internal/session"
)

// SessionHandler exposes the login/logout transitions. Credential checks
// and token issuance happen at the auth collaborator; this surface only
// accepts the resulting session and drives the engine's reaction to it.
type SessionHandler struct {
	reconciler *session.Reconciler
	manager    *session.Manager
	notices    *service.Notices
}

func NewSessionHandler(reconciler *session.Reconciler, manager *session.Manager, notices *service.Notices) *SessionHandler {
	return &SessionHandler{reconciler: reconciler, manager: manager, notices: notices}
}

type LoginRequestDTO struct {
	User   session.User   `json:"user"`
	Tokens session.Tokens `json:"tokens"`
}

type SessionResponseDTO struct {
	Authenticated bool          `json:"authenticated"`
	User          *session.User `json:"user,omitempty"`
	State         string        `json:"state"`
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Tokens.Access == "" {
		respondError(w, http.StatusBadRequest, "invalid_tokens", "access token is required")
		return
	}

	h.reconciler.Login(r.Context(), &req.User, &req.Tokens)
	respondJSON(w, http.StatusOK, h.sessionResponse())
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.reconciler.Logout(r.Context())
	respondJSON(w, http.StatusOK, h.sessionResponse())
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.sessionResponse())
}

func (h *SessionHandler) DrainNotices(w http.ResponseWriter, r *http.Request) {
	notices := h.notices.Drain()
	if notices == nil {
		notices = []service.Notice{}
	}
	respondJSON(w, http.StatusOK, notices)
}

func (h *SessionHandler) sessionResponse() SessionResponseDTO {
	return SessionResponseDTO{
		Authenticated: h.manager.IsAuthenticated(),
		User:          h.manager.User(),
		State:         string(h.reconciler.State()),
	}
}
