/*
handlers.go - HTTP API handlers for the dashboards

PURPOSE:
  Exposes boards, demo definitions and rendered pages as JSON. Rendering
  delegates to the demos registry; dataset endpoints expose the cache.

ENDPOINTS:
  Boards:
    GET    /api/boards                     List boards and their demos
    GET    /api/boards/{board}             One board

  Demos:
    GET    /api/demos/{demo}               Definition with resolved widgets
    GET    /api/demos/{demo}/render        Rendered page (widget values as query)

  Dataset:
    GET    /api/dataset                    Summary of the cached tables
    GET    /api/dataset/options/{column}   Sorted option list (?table=products)
    POST   /api/dataset/reload             Reload the cache from its source
    POST   /api/dataset/import             Copy the cached tables into SQLite
    GET    /api/imports                    Recent import runs (?limit=N)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid widget value
  - 404: Unknown board, demo or column
  - 503: Dataset could not be loaded
  - 500: Internal errors

SEE ALSO:
  - dto.go: Response types
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/warp/retail-dashboard/dataset"
	"github.com/warp/retail-dashboard/demos"
	"github.com/warp/retail-dashboard/store/sqlite"
	"go.uber.org/zap"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Registry *demos.Registry
	Cache    *dataset.Cache
	Store    *sqlite.Store // optional; import endpoints need it
	Logger   *zap.Logger
}

// NewHandler creates a new handler. store may be nil.
func NewHandler(registry *demos.Registry, cache *dataset.Cache, store *sqlite.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Registry: registry, Cache: cache, Store: store, Logger: logger}
}

// Warm loads the dataset ahead of the first request.
func (h *Handler) Warm(ctx context.Context) error {
	_, err := h.Cache.Get(ctx)
	return err
}

// Health reports liveness and whether the dataset is cached.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"dataset_loaded": h.Cache.Loaded(),
	})
}

// =============================================================================
// BOARD HANDLERS
// =============================================================================

// ListBoards returns every board.
func (h *Handler) ListBoards(w http.ResponseWriter, r *http.Request) {
	boards := h.Registry.Boards()
	dtos := make([]BoardDTO, len(boards))
	for i, b := range boards {
		dtos[i] = toBoardDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetBoard returns a single board.
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	b, err := h.Registry.Board(chi.URLParam(r, "board"))
	if err != nil {
		h.writeDomainError(w, "Board not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toBoardDTO(b))
}

// =============================================================================
// DEMO HANDLERS
// =============================================================================

// GetDemo returns a demo definition with its widgets resolved.
func (h *Handler) GetDemo(w http.ResponseWriter, r *http.Request) {
	if !h.ensureDataset(w, r) {
		return
	}
	d, params, err := h.Registry.Describe(r.Context(), chi.URLParam(r, "demo"), r.URL.Query())
	if err != nil {
		h.writeDomainError(w, "Failed to describe demo", err)
		return
	}
	writeJSON(w, http.StatusOK, DemoDTO{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Height:      d.Height,
		Params:      params,
	})
}

// RenderDemo renders a demo page for the widget values in the query string.
func (h *Handler) RenderDemo(w http.ResponseWriter, r *http.Request) {
	if !h.ensureDataset(w, r) {
		return
	}
	page, err := h.Registry.Render(r.Context(), chi.URLParam(r, "demo"), r.URL.Query())
	if err != nil {
		h.writeDomainError(w, "Failed to render demo", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// =============================================================================
// DATASET HANDLERS
// =============================================================================

// GetDataset returns the summary of the cached tables.
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	t, err := h.Cache.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Dataset unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, dataset.Summarize(t))
}

// GetOptions returns the sorted distinct values of a column.
func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	col, err := dataset.ParseColumn(chi.URLParam(r, "column"))
	if err != nil {
		h.writeDomainError(w, "Unknown column", err)
		return
	}
	t, err := h.Cache.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Dataset unavailable", err)
		return
	}

	table := r.URL.Query().Get("table")
	var ids []dataset.ID
	switch table {
	case "", "sales":
		table = "sales"
		ids = t.Options(col)
	case "products":
		if col == dataset.ColStore {
			writeError(w, http.StatusBadRequest, "Products have no store column", nil)
			return
		}
		ids = t.ProductOptions(col)
	default:
		writeError(w, http.StatusBadRequest, "table must be sales or products", nil)
		return
	}

	opts := make([]string, len(ids))
	for i, id := range ids {
		opts[i] = string(id)
	}
	writeJSON(w, http.StatusOK, OptionsDTO{Column: string(col), Table: table, Options: opts})
}

// ReloadDataset reloads the cache from its source.
func (h *Handler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	t, err := h.Cache.Reload(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Failed to reload dataset", err)
		return
	}
	writeJSON(w, http.StatusOK, ReloadResponse{Source: t.Source, Products: len(t.Products), Sales: len(t.Sales)})
}

// ImportDataset copies the cached tables into the SQLite store.
func (h *Handler) ImportDataset(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, http.StatusNotImplemented, "No store configured", nil)
		return
	}
	t, err := h.Cache.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Dataset unavailable", err)
		return
	}
	run, err := h.Store.ImportTables(r.Context(), t, t.Source)
	if err != nil {
		h.Logger.Error("import failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to import dataset", err)
		return
	}
	h.Logger.Info("dataset imported", zap.String("run", run.ID), zap.Int("products", run.Products), zap.Int("sales", run.Sales))
	writeJSON(w, http.StatusCreated, run)
}

// ListImports returns recent import runs.
func (h *Handler) ListImports(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeJSON(w, http.StatusOK, []sqlite.ImportRun{})
		return
	}
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer", err)
			return
		}
		limit = n
	}
	runs, err := h.Store.ListImports(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list imports", err)
		return
	}
	if runs == nil {
		runs = []sqlite.ImportRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// =============================================================================
// HELPERS
// =============================================================================

// ensureDataset writes a 503 and returns false when the dataset cannot be
// loaded, so render errors are never confused with load errors.
func (h *Handler) ensureDataset(w http.ResponseWriter, r *http.Request) bool {
	if _, err := h.Cache.Get(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Dataset unavailable", err)
		return false
	}
	return true
}

func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case demos.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case demos.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
