package cloudsync

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/refassist/internal/cloudsync"
	"github.com/MrJamesThe3rd/refassist/internal/http/respond"
)

const writeTimeout = 5 * time.Second

type Handler struct {
	svc     *cloudsync.Service
	origins []string
}

// NewHandler serves sync operations. origins are the host patterns allowed
// to open the status websocket.
func NewHandler(svc *cloudsync.Service, origins []string) *Handler {
	return &Handler{svc: svc, origins: origins}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/push", h.push)
	r.Post("/pull", h.pull)
	r.Get("/status", h.status)
	r.Get("/status/ws", h.statusStream)
}

func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SyncToCloud(r.Context()); err != nil {
		writeSyncError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, h.svc.Status())
}

func (h *Handler) pull(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.LoadFromCloud(r.Context())
	if err != nil {
		writeSyncError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, st)
}

func (h *Handler) status(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, h.svc.Status())
}

// statusStream sends the current status and then every change until the
// client goes away.
func (h *Handler) statusStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())

	updates := make(chan cloudsync.Status, 16)
	unsubscribe := h.svc.Subscribe(func(st cloudsync.Status) {
		select {
		case updates <- st:
		default:
			slog.Debug("dropping status update for slow client")
		}
	})
	defer unsubscribe()

	if err := send(ctx, conn, h.svc.Status()); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case st := <-updates:
			if err := send(ctx, conn, st); err != nil {
				slog.Debug("status stream closed", "error", err)
				return
			}
		}
	}
}

func send(ctx context.Context, conn *websocket.Conn, st cloudsync.Status) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	return wsjson.Write(ctx, conn, st)
}

func writeSyncError(w http.ResponseWriter, err error) {
	if errors.Is(err, cloudsync.ErrNotAuthenticated) {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	slog.Warn("sync request failed", "error", err)
	http.Error(w, err.Error(), http.StatusBadGateway)
}
