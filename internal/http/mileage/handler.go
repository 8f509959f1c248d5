package mileage

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/refassist/internal/http/respond"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

type Handler struct {
	store *ledger.Store
}

func NewHandler(store *ledger.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/{id}", h.delete)
}

type createTripRequest struct {
	Date      string           `json:"date"`
	From      string           `json:"from"`
	To        string           `json:"to"`
	RoundTrip bool             `json:"roundTrip"`
	Miles     decimal.Decimal  `json:"miles"`
	Rate      *decimal.Decimal `json:"rate"`
	GameID    *int64           `json:"gameId"`
}

func (h *Handler) list(w http.ResponseWriter, _ *http.Request) {
	trips := h.store.State().Mileage
	ledger.SortMileage(trips)

	respond.JSON(w, http.StatusOK, trips)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m, err := h.store.AddMileage(r.Context(), ledger.NewMileage{
		Date:      req.Date,
		From:      req.From,
		To:        req.To,
		RoundTrip: req.RoundTrip,
		Miles:     req.Miles,
		Rate:      req.Rate,
		GameID:    req.GameID,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, m)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteMileage(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
