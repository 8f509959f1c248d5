package importcsv

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/refassist/internal/http/respond"
	"github.com/MrJamesThe3rd/refassist/internal/importer"
	"github.com/MrJamesThe3rd/refassist/internal/ledger"
)

const maxUploadSize = 10 << 20

type Handler struct {
	importSvc *importer.Service
	store     *ledger.Store
}

func NewHandler(importSvc *importer.Service, store *ledger.Store) *Handler {
	return &Handler{
		importSvc: importSvc,
		store:     store,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/games", h.importGames)
}

type importResponse struct {
	Imported int           `json:"imported"`
	Games    []ledger.Game `json:"games"`
}

// importGames adds every game in the uploaded schedule, or none of them.
func (h *Handler) importGames(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(importer.Source(r.FormValue("source")), file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	games, err := h.store.AddGames(r.Context(), params)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if games == nil {
		games = []ledger.Game{}
	}

	respond.JSON(w, http.StatusCreated, importResponse{Imported: len(games), Games: games})
}
