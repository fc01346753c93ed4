package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/identity"
)

type SignInRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SessionResponse struct {
	SignedIn bool           `json:"signedIn"`
	User     *identity.User `json:"user,omitempty"`
}

type SessionHandler struct {
	session *identity.Session
}

func NewSessionHandler(session *identity.Session) *SessionHandler {
	return &SessionHandler{session: session}
}

func (h *SessionHandler) RegisterRoutes(router chi.Router) {
	router.Get("/session", h.handleGetSession)
	router.Put("/session", h.handleSignIn)
	router.Delete("/session", h.handleSignOut)
}

func (h *SessionHandler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	u, ok := h.session.CurrentUser(r.Context())
	if !ok {
		respondWithJSON(w, http.StatusOK, SessionResponse{})
		return
	}
	respondWithJSON(w, http.StatusOK, SessionResponse{SignedIn: true, User: &u})
}

func (h *SessionHandler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var requestPayload SignInRequest
	if !decodeJSON(w, r, &requestPayload) {
		return
	}

	u, err := h.session.SignIn(requestPayload.Name, requestPayload.Email)
	if err != nil {
		respondWithServiceError(w, err, "Failed to sign in")
		return
	}

	respondWithJSON(w, http.StatusOK, SessionResponse{SignedIn: true, User: &u})
}

func (h *SessionHandler) handleSignOut(w http.ResponseWriter, _ *http.Request) {
	h.session.SignOut()
	w.WriteHeader(http.StatusNoContent)
}
