package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/models"
	"github.com/Binuda-Dewhan/Web-Scrapping-Project-E-commerce-platform/internal/storage"
)

// Handlers serves the persisted product dataset read-only. The report
// generator (and anything else downstream) can pull records without touching
// the crawl pipeline or the files on disk.
type Handlers struct {
	store  *storage.Store
	logger *slog.Logger
}

func NewHandlers(store *storage.Store, logger *slog.Logger) *Handlers {
	return &Handlers{
		store:  store,
		logger: logger.With("component", "api"),
	}
}

// ProductRecord pairs a stored work item with its storage key.
type ProductRecord struct {
	Key     string              `json:"key"`
	Product *models.ProductItem `json:"product"`
}

// StatsResponse summarizes the state of the dataset.
type StatsResponse struct {
	Total        int `json:"total"`
	Enriched     int `json:"enriched"`
	WithReviews  int `json:"with_reviews"`
	TotalReviews int `json:"total_reviews"`
	Corrupt      int `json:"corrupt"`
}

// ListProducts returns every loadable record. Corrupt records are skipped
// and logged, never fatal to the listing.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	keys, err := h.store.ListAll()
	if err != nil {
		h.logger.Error("failed to list work items", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	records := make([]ProductRecord, 0, len(keys))
	for _, key := range keys {
		item, err := h.store.Load(key)
		if err != nil {
			h.logger.Warn("skipping unreadable work item", "key", key, "error", err)
			continue
		}
		records = append(records, ProductRecord{Key: key, Product: item})
	}

	h.respondJSON(w, http.StatusOK, records)
}

// GetProduct returns one record by its storage key.
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		h.respondError(w, http.StatusBadRequest, "product key is required")
		return
	}

	item, err := h.store.Load(key)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			h.respondError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, storage.ErrCorrupt):
			h.respondError(w, http.StatusUnprocessableEntity, "product record is corrupt")
		default:
			h.logger.Error("failed to load work item", "key", key, "error", err)
			h.respondError(w, http.StatusInternalServerError, "failed to load product")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, ProductRecord{Key: key, Product: item})
}

// GetStats summarizes the dataset.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	keys, err := h.store.ListAll()
	if err != nil {
		h.logger.Error("failed to list work items", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	stats := StatsResponse{Total: len(keys)}
	for _, key := range keys {
		item, err := h.store.Load(key)
		if err != nil {
			stats.Corrupt++
			continue
		}
		if item.FullSpecs != nil || item.AllReviews != nil {
			stats.Enriched++
		}
		if len(item.AllReviews) > 0 {
			stats.WithReviews++
			stats.TotalReviews += len(item.AllReviews)
		}
	}

	h.respondJSON(w, http.StatusOK, stats)
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
