package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/refassist/internal/app"
	"github.com/MrJamesThe3rd/refassist/internal/config"
	"github.com/MrJamesThe3rd/refassist/internal/export"
	refHttp "github.com/MrJamesThe3rd/refassist/internal/http"
	calendarHandler "github.com/MrJamesThe3rd/refassist/internal/http/calendar"
	syncHandler "github.com/MrJamesThe3rd/refassist/internal/http/cloudsync"
	expenseHandler "github.com/MrJamesThe3rd/refassist/internal/http/expense"
	exportHandler "github.com/MrJamesThe3rd/refassist/internal/http/export"
	gameHandler "github.com/MrJamesThe3rd/refassist/internal/http/game"
	importHandler "github.com/MrJamesThe3rd/refassist/internal/http/importcsv"
	mileageHandler "github.com/MrJamesThe3rd/refassist/internal/http/mileage"
	reportHandler "github.com/MrJamesThe3rd/refassist/internal/http/report"
	sessionHandler "github.com/MrJamesThe3rd/refassist/internal/http/session"
	stateHandler "github.com/MrJamesThe3rd/refassist/internal/http/state"
	"github.com/MrJamesThe3rd/refassist/internal/importer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("starting services: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Error("failed to close services", "error", err)
		}
	}()

	var (
		importService = importer.NewService()
		exportService = export.NewService(a.Ledger)
	)

	var gameOpts []gameHandler.Option
	if a.Calendar != nil {
		gameOpts = append(gameOpts, gameHandler.WithCalendar(a.Calendar))
	}

	handlers := refHttp.Handlers{
		Games:    gameHandler.NewHandler(a.Ledger, gameOpts...),
		Expenses: expenseHandler.NewHandler(a.Ledger),
		Mileage:  mileageHandler.NewHandler(a.Ledger),
		State:    stateHandler.NewHandler(a.Ledger, a.ClearAll),
		Reports:  reportHandler.NewHandler(a.Ledger),
		Export:   exportHandler.NewHandler(exportService, a.Ledger, a.Location),
		Import:   importHandler.NewHandler(importService, a.Ledger),
	}

	if a.Sync != nil {
		handlers.Sync = syncHandler.NewHandler(a.Sync, cfg.Server.CORSOrigins)
		handlers.Session = sessionHandler.NewHandler(a.Session, sessionHandler.WithPuller(a.Sync))
	}

	if a.Calendar != nil {
		handlers.Calendar = calendarHandler.NewHandler(a.Calendar)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           refHttp.New(handlers, cfg.Server.CORSOrigins),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", srv.Addr, "sync", a.Sync != nil, "calendar", a.Calendar != nil)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
