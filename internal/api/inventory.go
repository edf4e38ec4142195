package api

import (
	"log/slog"
	"net/http"

	"github.com/jusmik/outpost/internal/game"
	"github.com/jusmik/outpost/internal/model"
)

// InventoryHandler handles inventory endpoints.
type InventoryHandler struct {
	Game *game.Service
}

type grantRequest struct {
	PlayerID int64             `json:"player_id"`
	Items    []model.ItemStack `json:"items"`
}

// List handles GET /api/inventory, returning the caller's own ledger.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	entries, err := h.Game.Inventory(r.Context(), claims.PlayerID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list inventory")
		return
	}
	if entries == nil {
		entries = []model.InventoryEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

// Grant handles POST /api/inventory/grant (admin seeding/support tooling).
func (h *InventoryHandler) Grant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerID <= 0 {
		jsonError(w, http.StatusBadRequest, "player_id is required")
		return
	}

	if err := h.Game.GrantItems(r.Context(), req.PlayerID, req.Items); err != nil {
		writeGameError(w, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("items granted", "admin", claims.Username, "player_id", req.PlayerID, "lines", len(req.Items))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "items granted"})
}
