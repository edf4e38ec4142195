package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/jusmik/outpost/internal/model"
	"github.com/jusmik/outpost/internal/store"
)

// PlayersHandler handles admin player-management endpoints.
type PlayersHandler struct {
	DB *sql.DB
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// List handles GET /api/users.
func (h *PlayersHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := store.ListPlayers(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list players")
		return
	}
	if players == nil {
		players = []model.Player{}
	}
	jsonResponse(w, http.StatusOK, players)
}

// Get handles GET /api/users/{id}.
func (h *PlayersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid player id")
		return
	}

	player, err := store.GetPlayer(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if player == nil {
		jsonError(w, http.StatusNotFound, "player not found")
		return
	}
	jsonResponse(w, http.StatusOK, player)
}

// UpdateRole handles PUT /api/users/{id}.
func (h *PlayersHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid player id")
		return
	}

	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role != model.RoleAdmin && req.Role != model.RoleModerator && req.Role != model.RolePlayer {
		jsonError(w, http.StatusBadRequest, "invalid role")
		return
	}

	if err := store.UpdatePlayerRole(r.Context(), h.DB, id, req.Role); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update role")
		return
	}

	slog.Info("player role updated", "player_id", id, "role", req.Role)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "role updated"})
}

// ResetPassword handles PUT /api/users/{id}/password.
func (h *PlayersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid player id")
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Password) < 8 {
		jsonError(w, http.StatusBadRequest, "password of at least 8 characters required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	if err := store.UpdatePlayerPassword(r.Context(), h.DB, id, string(hash)); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	slog.Info("player password reset", "player_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password reset"})
}

// Delete handles DELETE /api/users/{id}.
func (h *PlayersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid player id")
		return
	}

	if err := store.DeletePlayer(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete player")
		return
	}

	slog.Info("player deleted", "player_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "player deleted"})
}
