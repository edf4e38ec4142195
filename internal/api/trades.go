package api

import (
	"net/http"

	"github.com/jusmik/outpost/internal/game"
	"github.com/jusmik/outpost/internal/model"
)

// TradesHandler handles trade offer and history endpoints.
type TradesHandler struct {
	Game *game.Service
}

type createOfferRequest struct {
	Offering        []model.ItemStack `json:"offering"`
	Requesting      []model.ItemStack `json:"requesting"`
	Message         string            `json:"message"`
	ExpirationHours int               `json:"expiration_hours"`
}

type rateTradeRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// List handles GET /api/trades. By default it returns offers available to
// the caller; with ?mine=1 it returns the caller's own offers instead.
func (h *TradesHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var offers []model.TradeOffer
	var err error
	if r.URL.Query().Get("mine") == "1" {
		offers, err = h.Game.MyOffers(r.Context(), claims.PlayerID)
	} else {
		offers, err = h.Game.AvailableOffers(r.Context(), claims.PlayerID)
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list offers")
		return
	}
	if offers == nil {
		offers = []model.TradeOffer{}
	}
	jsonResponse(w, http.StatusOK, offers)
}

// Create handles POST /api/trades.
func (h *TradesHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createOfferRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	offer, err := h.Game.CreateOffer(r.Context(), claims.PlayerID, req.Offering, req.Requesting, req.Message, req.ExpirationHours)
	if err != nil {
		writeGameError(w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, offer)
}

// Get handles GET /api/trades/{id}.
func (h *TradesHandler) Get(w http.ResponseWriter, r *http.Request) {
	offer, err := h.Game.Offer(r.Context(), r.PathValue("id"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, offer)
}

// Accept handles POST /api/trades/{id}/accept.
func (h *TradesHandler) Accept(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	record, err := h.Game.AcceptOffer(r.Context(), claims.PlayerID, r.PathValue("id"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, record)
}

// Cancel handles POST /api/trades/{id}/cancel.
func (h *TradesHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	offer, err := h.Game.CancelOffer(r.Context(), claims.PlayerID, r.PathValue("id"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, offer)
}

// History handles GET /api/trades/history, returning the completed trades
// the caller participated in.
func (h *TradesHandler) History(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	records, err := h.Game.TradeHistory(r.Context(), claims.PlayerID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list trade history")
		return
	}
	if records == nil {
		records = []model.TradeHistory{}
	}
	jsonResponse(w, http.StatusOK, records)
}

// Rate handles POST /api/trades/history/{id}/rating.
func (h *TradesHandler) Rate(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req rateTradeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Game.RateTrade(r.Context(), claims.PlayerID, r.PathValue("id"), req.Rating, req.Comment)
	if err != nil {
		writeGameError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, record)
}
