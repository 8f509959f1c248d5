package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/refassist/internal/export"
	api "github.com/MrJamesThe3rd/refassist/internal/http"
	exporthandler "github.com/MrJamesThe3rd/refassist/internal/http/export"
	"github.com/MrJamesThe3rd/refassist/internal/http/expense"
	"github.com/MrJamesThe3rd/refassist/internal/http/game"
	"github.com/MrJamesThe3rd/refassist/internal/http/importcsv"
	"github.com/MrJamesThe3rd/refassist/internal/http/mileage"
	"github.com/MrJamesThe3rd/refassist/internal/http/report"
	"github.com/MrJamesThe3rd/refassist/internal/http/state"
	"github.com/MrJamesThe3rd/refassist/internal/importer"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
	"github.com/MrJamesThe3rd/refassist/internal/ledger/store"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	repo, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	s, err := ledger.Open(context.Background(), repo)
	require.NoError(t, err)

	return api.New(api.Handlers{
		Games:    game.NewHandler(s),
		Expenses: expense.NewHandler(s),
		Mileage:  mileage.NewHandler(s),
		State:    state.NewHandler(s, s.ClearAll),
		Reports:  report.NewHandler(s),
		Export:   exporthandler.NewHandler(export.NewService(s), s, time.UTC),
		Import:   importcsv.NewHandler(importer.NewService(), s),
	}, []string{"http://localhost:*"})
}

func TestRouter(t *testing.T) {
	tests := map[string]struct {
		method      string
		target      string
		contentType string
		body        string
		wantCode    int
	}{
		"CreateGame": {
			method:      http.MethodPost,
			target:      "/api/v1/games",
			contentType: "application/json",
			body:        `{"date":"2024-05-01","pay":50}`,
			wantCode:    http.StatusCreated,
		},
		"CreateGameWrongContentType": {
			method:      http.MethodPost,
			target:      "/api/v1/games",
			contentType: "text/plain",
			body:        `{"date":"2024-05-01","pay":50}`,
			wantCode:    http.StatusUnsupportedMediaType,
		},
		"ListExpenses": {
			method:   http.MethodGet,
			target:   "/api/v1/expenses",
			wantCode: http.StatusOK,
		},
		"Summary": {
			method:   http.MethodGet,
			target:   "/api/v1/reports/summary",
			wantCode: http.StatusOK,
		},
		"SyncNotMounted": {
			method:   http.MethodPost,
			target:   "/api/v1/sync/push",
			wantCode: http.StatusNotFound,
		},
		"SessionNotMounted": {
			method:   http.MethodPost,
			target:   "/api/v1/session",
			wantCode: http.StatusNotFound,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.target, nil)
			}

			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			rec := httptest.NewRecorder()
			newRouter(t).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_CORS(t *testing.T) {
	tests := map[string]struct {
		origin    string
		wantAllow string
	}{
		"AllowedOrigin":    {origin: "http://localhost:5173", wantAllow: "http://localhost:5173"},
		"DisallowedOrigin": {origin: "https://evil.example", wantAllow: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/v1/games", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)

			rec := httptest.NewRecorder()
			newRouter(t).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
