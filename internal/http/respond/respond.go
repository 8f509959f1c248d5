package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/refassist/internal/auth"
	"github.com/MrJamesThe3rd/refassist/internal/cloudsync"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error maps err to a status code. Errors without a known sentinel are
// logged and reported as internal.
func Error(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ledger.ErrUnknownGame):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, cloudsync.ErrNotAuthenticated), errors.Is(err, auth.ErrInvalidToken):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, ledger.ErrPersist):
		slog.Error("failed to save data", "error", err)
		http.Error(w, "failed to save data", http.StatusInternalServerError)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// ID parses the {id} path parameter.
func ID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}
