package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"vram-calculator/core/models"
	"vram-calculator/core/presets"
)

// CatalogHandler serves the static preset and GPU tables
type CatalogHandler struct {
	gpus []models.GPU
}

// NewCatalogHandler creates a new catalog handler over a GPU catalog
func NewCatalogHandler(gpus []models.GPU) *CatalogHandler {
	return &CatalogHandler{gpus: gpus}
}

// ListPresets handles GET /v1/presets
func (h *CatalogHandler) ListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, presets.List())
}

// GetPreset handles GET /v1/presets/{id}
func (h *CatalogHandler) GetPreset(w http.ResponseWriter, r *http.Request) {
	preset, ok := presets.Lookup(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "Preset not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, preset)
}

// ListGPUs handles GET /v1/gpus
func (h *CatalogHandler) ListGPUs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.gpus)
}
