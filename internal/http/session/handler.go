package session

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/refassist/internal/auth"
	"github.com/MrJamesThe3rd/refassist/internal/http/respond"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

// Puller loads the signed-in user's cloud data.
type Puller interface {
	LoadFromCloud(ctx context.Context) (ledger.State, error)
}

type Handler struct {
	session *auth.Session
	puller  Puller
}

type Option func(*Handler)

// WithPuller makes sign-in load the user's cloud data.
func WithPuller(p Puller) Option {
	return func(h *Handler) { h.puller = p }
}

func NewHandler(session *auth.Session, opts ...Option) *Handler {
	h := &Handler{session: session}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Post("/", h.signIn)
	r.Delete("/", h.signOut)
}

type sessionResponse struct {
	UserID string `json:"userId"`
	Loaded bool   `json:"loaded"`
}

func (h *Handler) get(w http.ResponseWriter, _ *http.Request) {
	userID, ok := h.session.CurrentUser()
	if !ok {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	respond.JSON(w, http.StatusOK, sessionResponse{UserID: userID})
}

// signIn makes the bearer token's user current and then pulls their cloud
// data. A failed pull does not fail the sign-in.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		http.Error(w, "bearer token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.session.SignIn(token)
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := sessionResponse{UserID: userID}

	if h.puller != nil {
		if _, err := h.puller.LoadFromCloud(r.Context()); err != nil {
			slog.Warn("failed to load cloud data on sign-in", "user_id", userID, "error", err)
		} else {
			resp.Loaded = true
		}
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) signOut(w http.ResponseWriter, _ *http.Request) {
	h.session.SignOut()
	w.WriteHeader(http.StatusNoContent)
}
