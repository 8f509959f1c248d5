package calendar

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/refassist/internal/http/respond"
)

type Syncer interface {
	SyncAll(ctx context.Context) (int, error)
}

type Handler struct {
	svc Syncer
}

func NewHandler(svc Syncer) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/sync", h.sync)
}

type syncResponse struct {
	Created int    `json:"created"`
	Error   string `json:"error,omitempty"`
}

// sync creates events for every game without one. Events created before a
// failure are kept and counted.
func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	created, err := h.svc.SyncAll(r.Context())
	if err != nil {
		slog.Warn("calendar sync incomplete", "created", created, "error", err)
		respond.JSON(w, http.StatusBadGateway, syncResponse{Created: created, Error: err.Error()})

		return
	}

	respond.JSON(w, http.StatusOK, syncResponse{Created: created})
}
