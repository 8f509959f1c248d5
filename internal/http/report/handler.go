package report

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/refassist/internal/http/respond"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
	"github.com/MrJamesThe3rd/refassist/internal/report"
)

type Source interface {
	State() ledger.State
}

type Handler struct {
	source Source
	now    func() time.Time
}

func NewHandler(source Source) *Handler {
	return &Handler{source: source, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/summary", h.summary)
}

func (h *Handler) dashboard(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, report.NewDashboard(h.source.State(), h.now()))
}

func (h *Handler) summary(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, report.NewSummary(h.source.State()))
}
