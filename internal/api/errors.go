package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jusmik/outpost/internal/game"
)

// writeGameError maps a lifecycle error to a status code and a structured
// body so the client can render a specific message. Anything unrecognized
// is a storage-level failure and surfaces as a 500.
func writeGameError(w http.ResponseWriter, err error) {
	var (
		invalid    *game.InvalidDataError
		shortRes   *game.InsufficientResourcesError
		shortItems *game.InsufficientItemsError
		maxReached *game.MaxBuildingsError
		noUpgrade  *game.CannotUpgradeError
	)

	switch {
	case errors.As(err, &invalid):
		jsonError(w, http.StatusBadRequest, invalid.Error())

	case errors.As(err, &shortRes):
		jsonResponse(w, http.StatusConflict, map[string]any{
			"error":   shortRes.Error(),
			"missing": shortRes.Missing,
		})

	case errors.As(err, &shortItems):
		jsonResponse(w, http.StatusConflict, map[string]any{
			"error":    shortItems.Error(),
			"item_id":  shortItems.ItemID,
			"required": shortItems.Required,
			"owned":    shortItems.Owned,
		})

	case errors.As(err, &maxReached):
		jsonResponse(w, http.StatusConflict, map[string]any{
			"error":       maxReached.Error(),
			"template_id": maxReached.TemplateID,
			"max":         maxReached.Max,
		})

	case errors.As(err, &noUpgrade):
		jsonResponse(w, http.StatusConflict, map[string]any{
			"error":  noUpgrade.Error(),
			"reason": noUpgrade.Reason,
		})

	case errors.Is(err, game.ErrTemplateNotFound),
		errors.Is(err, game.ErrBuildingNotFound),
		errors.Is(err, game.ErrOfferNotFound),
		errors.Is(err, game.ErrHistoryNotFound):
		jsonError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, game.ErrNotOwner),
		errors.Is(err, game.ErrNotParticipant):
		jsonError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, game.ErrBuildingNotComplete),
		errors.Is(err, game.ErrOfferExpired),
		errors.Is(err, game.ErrOfferAlreadyCompleted),
		errors.Is(err, game.ErrOfferCancelled),
		errors.Is(err, game.ErrCannotAcceptOwnOffer):
		jsonError(w, http.StatusConflict, err.Error())

	default:
		slog.Error("lifecycle operation failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
