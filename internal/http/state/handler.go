package state

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/refassist/internal/http/respond"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

type Source interface {
	State() ledger.State
}

// ClearFunc wipes all of the user's data.
type ClearFunc func(ctx context.Context) error

type Handler struct {
	source Source
	clear  ClearFunc
}

func NewHandler(source Source, clear ClearFunc) *Handler {
	return &Handler{source: source, clear: clear}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Delete("/", h.clearAll)
}

func (h *Handler) get(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, h.source.State())
}

func (h *Handler) clearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.clear(r.Context()); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
