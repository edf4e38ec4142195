package api

import (
	"net/http"

	"github.com/jusmik/outpost/internal/catalog"
)

// CatalogHandler serves the static item and building definitions.
type CatalogHandler struct {
	Catalog *catalog.Catalog
}

// Items handles GET /api/catalog/items.
func (h *CatalogHandler) Items(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.Catalog.Items())
}

// Buildings handles GET /api/catalog/buildings.
func (h *CatalogHandler) Buildings(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.Catalog.Buildings())
}
