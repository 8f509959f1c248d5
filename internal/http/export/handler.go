package export

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/refassist/internal/calendar"
	"github.com/MrJamesThe3rd/refassist/internal/export"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Source interface {
	State() ledger.State
}

type Handler struct {
	svc    *export.Service
	source Source
	loc    *time.Location
	now    func() time.Time
}

// NewHandler serves file exports. loc is the zone game times are in.
func NewHandler(svc *export.Service, source Source, loc *time.Location) *Handler {
	return &Handler{svc: svc, source: source, loc: loc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/expenses.csv", h.expensesCSV)
	r.Get("/mileage.csv", h.mileageCSV)
	r.Get("/workbook.xlsx", h.workbook)
	r.Get("/games.ics", h.gamesICS)
	r.Get("/receipts.zip", h.receipts)
}

func (h *Handler) expensesCSV(w http.ResponseWriter, _ *http.Request) {
	h.attach(w, "text/csv", "expenses", "csv")

	if err := h.svc.ExpensesCSV(w); err != nil {
		slog.Error("failed to write expenses csv", "error", err)
	}
}

func (h *Handler) mileageCSV(w http.ResponseWriter, _ *http.Request) {
	h.attach(w, "text/csv", "mileage", "csv")

	if err := h.svc.MileageCSV(w); err != nil {
		slog.Error("failed to write mileage csv", "error", err)
	}
}

func (h *Handler) workbook(w http.ResponseWriter, _ *http.Request) {
	h.attach(w, xlsxContentType, "refassist", "xlsx")

	if err := h.svc.Workbook(w); err != nil {
		slog.Error("failed to write workbook", "error", err)
	}
}

func (h *Handler) gamesICS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")

	if err := calendar.WriteICS(w, h.source.State().Games, h.loc, h.now()); err != nil {
		slog.Error("failed to write calendar feed", "error", err)
	}
}

// receipts zips every receipt file together with a summary of all expenses.
func (h *Handler) receipts(w http.ResponseWriter, _ *http.Request) {
	tmpDir, err := os.MkdirTemp("", "refassist-receipts-*")
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tmpDir)

	items, err := h.svc.ExportReceipts(tmpDir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	summary := h.svc.GenerateSummary(items)
	if err := os.WriteFile(filepath.Join(tmpDir, "summary.txt"), []byte(summary), 0o644); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.attach(w, "application/zip", "receipts", "zip")

	zipWriter := zip.NewWriter(w)
	defer zipWriter.Close()

	err = filepath.Walk(tmpDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		relPath, _ := filepath.Rel(tmpDir, path)

		zf, err := zipWriter.Create(relPath)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(zf, f)

		return err
	})
	if err != nil {
		slog.Error("failed to create zip", "error", err)
	}
}

func (h *Handler) attach(w http.ResponseWriter, contentType, name, ext string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"%s_%s.%s\"", name, h.now().Format("20060102"), ext))
}
