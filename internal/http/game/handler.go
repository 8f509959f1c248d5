package game

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/refassist/internal/http/respond"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

// Calendar mirrors game changes to a calendar. Its failures are logged and
// never fail the request.
type Calendar interface {
	CreateForGame(ctx context.Context, g ledger.Game) (string, error)
	UpdateForGame(ctx context.Context, g ledger.Game) error
	DeleteForGame(ctx context.Context, g ledger.Game) error
}

type Handler struct {
	store    *ledger.Store
	calendar Calendar
}

type Option func(*Handler)

func WithCalendar(c Calendar) Option {
	return func(h *Handler) { h.calendar = c }
}

func NewHandler(store *ledger.Store, opts ...Option) *Handler {
	h := &Handler{store: store}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createGameRequest struct {
	Date    string          `json:"date"`
	Time    string          `json:"time"`
	League  string          `json:"league"`
	Home    string          `json:"home"`
	Away    string          `json:"away"`
	Pay     decimal.Decimal `json:"pay"`
	Updated bool            `json:"updated"`
	Paid    bool            `json:"paid"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	respond.JSON(w, http.StatusOK, ledger.FilterGames(h.store.State().Games, filter))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	g, found := h.store.Game(id)
	if !found {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	respond.JSON(w, http.StatusOK, g)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	g, err := h.store.AddGame(r.Context(), ledger.NewGame{
		Date:    req.Date,
		Time:    req.Time,
		League:  req.League,
		Home:    req.Home,
		Away:    req.Away,
		Pay:     req.Pay,
		Updated: req.Updated,
		Paid:    req.Paid,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	if h.calendar != nil {
		eventID, err := h.calendar.CreateForGame(r.Context(), g)
		if err != nil {
			slog.Warn("failed to create calendar event", "game_id", g.ID, "error", err)
		} else {
			g.CalendarEventID = eventID
		}
	}

	respond.JSON(w, http.StatusCreated, g)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var u ledger.GameUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if u.IsZero() {
		http.Error(w, "no fields to update", http.StatusBadRequest)
		return
	}

	g, found, err := h.store.UpdateGame(r.Context(), id, u)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if !found {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	if h.calendar != nil && g.CalendarEventID != "" {
		if err := h.calendar.UpdateForGame(r.Context(), g); err != nil {
			slog.Warn("failed to update calendar event", "game_id", g.ID, "error", err)
		}
	}

	respond.JSON(w, http.StatusOK, g)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	g, found := h.store.Game(id)

	if err := h.store.DeleteGame(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}

	if found && h.calendar != nil {
		if err := h.calendar.DeleteForGame(r.Context(), g); err != nil {
			slog.Warn("failed to delete calendar event", "game_id", g.ID, "error", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseFilter(r *http.Request) (ledger.GameFilter, error) {
	q := r.URL.Query()

	var filter ledger.GameFilter

	if s := q.Get("updated"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return filter, errInvalidParam("updated")
		}

		filter.Updated = new(v)
	}

	if s := q.Get("paid"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return filter, errInvalidParam("paid")
		}

		filter.Paid = new(v)
	}

	for param, dst := range map[string]*string{"from": &filter.From, "to": &filter.To} {
		s := q.Get(param)
		if s == "" {
			continue
		}

		if _, err := time.Parse(time.DateOnly, s); err != nil {
			return filter, errInvalidParam(param)
		}

		*dst = s
	}

	return filter, nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string {
	return "invalid " + string(e) + " parameter"
}
