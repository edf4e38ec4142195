package api

import (
	"net/http"

	"github.com/jusmik/outpost/internal/game"
	"github.com/jusmik/outpost/internal/model"
)

// BuildingsHandler handles construction endpoints.
type BuildingsHandler struct {
	Game *game.Service
}

type startConstructionRequest struct {
	TemplateID  string  `json:"template_id"`
	TerritoryID string  `json:"territory_id"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// List handles GET /api/buildings. With ?territory_id= it returns the
// buildings in that territory, otherwise the caller's own buildings.
func (h *BuildingsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	territoryID := r.URL.Query().Get("territory_id")
	ownerID := int64(0)
	if territoryID == "" {
		ownerID = claims.PlayerID
	}

	buildings, err := h.Game.Buildings(r.Context(), territoryID, ownerID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list buildings")
		return
	}
	if buildings == nil {
		buildings = []model.Building{}
	}
	jsonResponse(w, http.StatusOK, buildings)
}

// Create handles POST /api/buildings, starting construction.
func (h *BuildingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req startConstructionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TemplateID == "" || req.TerritoryID == "" {
		jsonError(w, http.StatusBadRequest, "template_id and territory_id are required")
		return
	}

	building, err := h.Game.StartConstruction(r.Context(), claims.PlayerID, req.TerritoryID, req.TemplateID, req.Lat, req.Lng)
	if err != nil {
		writeGameError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, building)
}

// Get handles GET /api/buildings/{id}.
func (h *BuildingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	building, err := h.Game.Building(r.Context(), r.PathValue("id"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, building)
}

// Complete handles POST /api/buildings/{id}/complete.
func (h *BuildingsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	building, err := h.Game.CompleteConstruction(r.Context(), claims.PlayerID, r.PathValue("id"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, building)
}

// Upgrade handles POST /api/buildings/{id}/upgrade.
func (h *BuildingsHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	building, err := h.Game.UpgradeBuilding(r.Context(), claims.PlayerID, r.PathValue("id"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, building)
}

// Delete handles DELETE /api/buildings/{id}. Demolition does not refund
// construction resources.
func (h *BuildingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.Game.DemolishBuilding(r.Context(), claims.PlayerID, r.PathValue("id")); err != nil {
		writeGameError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "building demolished"})
}
