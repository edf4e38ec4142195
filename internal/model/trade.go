package model

import "time"

// TradeOffer represents a posted intent to exchange one item set for another.
type TradeOffer struct {
	ID          string      `json:"id"`
	OwnerID     int64       `json:"owner_id"`
	Offering    []ItemStack `json:"offering"`
	Requesting  []ItemStack `json:"requesting"`
	Status      string      `json:"status"`
	Message     string      `json:"message,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	ExpiresAt   time.Time   `json:"expires_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	CompletedBy *int64      `json:"completed_by,omitempty"`

	// Joined fields (not always populated).
	OwnerUsername string `json:"owner_username,omitempty"`
}

// Trade offer statuses. Completed, cancelled and expired are terminal.
const (
	OfferStatusActive    = "active"
	OfferStatusCompleted = "completed"
	OfferStatusCancelled = "cancelled"
	OfferStatusExpired   = "expired"
)

// Expired reports whether the offer deadline has passed. Expiry is enforced
// lazily by readers, never by a background sweep.
func (o *TradeOffer) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// TradeHistory is the immutable record of a completed exchange. Only the
// rating fields are written after creation.
type TradeHistory struct {
	ID             string      `json:"id"`
	OfferID        string      `json:"offer_id,omitempty"`
	SellerID       int64       `json:"seller_id"`
	SellerUsername string      `json:"seller_username"`
	BuyerID        int64       `json:"buyer_id"`
	BuyerUsername  string      `json:"buyer_username"`
	Offered        []ItemStack `json:"offered"`
	Requested      []ItemStack `json:"requested"`
	CompletedAt    time.Time   `json:"completed_at"`
	SellerRating   *int        `json:"seller_rating,omitempty"`
	SellerComment  string      `json:"seller_comment,omitempty"`
	BuyerRating    *int        `json:"buyer_rating,omitempty"`
	BuyerComment   string      `json:"buyer_comment,omitempty"`
}
