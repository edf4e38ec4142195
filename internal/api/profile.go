package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/jusmik/outpost/internal/imaging"
	"github.com/jusmik/outpost/internal/store"
)

// maxAvatarUpload bounds the request body for avatar uploads.
const maxAvatarUpload = 5 << 20 // 5 MiB

// ProfileHandler handles the caller's own profile.
type ProfileHandler struct {
	DB *sql.DB
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	player, err := store.GetPlayer(r.Context(), h.DB, claims.PlayerID)
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

// UploadAvatar handles PUT /api/profile/avatar.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	result, err := imaging.Process(http.MaxBytesReader(w, r.Body, maxAvatarUpload))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetPlayerAvatar(r.Context(), h.DB, claims.PlayerID, result.Data, result.MIME); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to store avatar")
		return
	}

	slog.Info("avatar updated", "player", claims.Username, "bytes", len(result.Data))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "avatar updated"})
}

// GetAvatar handles GET /api/profile/avatar/{id}, serving any player's
// avatar to authenticated callers (shown beside offers and ratings).
func (h *ProfileHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid player id")
		return
	}

	image, mime, err := store.GetPlayerAvatar(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if len(image) == 0 {
		jsonError(w, http.StatusNotFound, "no avatar")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(image)
}
