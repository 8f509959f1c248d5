package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/refassist/internal/http/calendar"
	"github.com/MrJamesThe3rd/refassist/internal/http/cloudsync"
	"github.com/MrJamesThe3rd/refassist/internal/http/expense"
	"github.com/MrJamesThe3rd/refassist/internal/http/export"
	"github.com/MrJamesThe3rd/refassist/internal/http/game"
	"github.com/MrJamesThe3rd/refassist/internal/http/importcsv"
	"github.com/MrJamesThe3rd/refassist/internal/http/mileage"
	"github.com/MrJamesThe3rd/refassist/internal/http/report"
	"github.com/MrJamesThe3rd/refassist/internal/http/session"
	"github.com/MrJamesThe3rd/refassist/internal/http/state"
)

// Handlers groups the v1 handlers. Sync, Session and Calendar are optional
// and their routes are only mounted when set.
type Handlers struct {
	Games    *game.Handler
	Expenses *expense.Handler
	Mileage  *mileage.Handler
	State    *state.Handler
	Reports  *report.Handler
	Export   *export.Handler
	Import   *importcsv.Handler
	Sync     *cloudsync.Handler
	Session  *session.Handler
	Calendar *calendar.Handler
}

func New(h Handlers, allowedOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/games", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Games.Routes(r)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Expenses.Routes(r)
		})

		r.Route("/mileage", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Mileage.Routes(r)
		})

		r.Route("/state", h.State.Routes)
		r.Route("/reports", h.Reports.Routes)
		r.Route("/export", h.Export.Routes)
		r.Route("/import", h.Import.Routes)

		if h.Sync != nil {
			r.Route("/sync", h.Sync.Routes)
		}

		if h.Session != nil {
			r.Route("/session", h.Session.Routes)
		}

		if h.Calendar != nil {
			r.Route("/calendar", h.Calendar.Routes)
		}
	})

	return router
}
