package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jusmik/outpost/internal/feed"
	"github.com/jusmik/outpost/internal/model"
	"github.com/jusmik/outpost/internal/store"
)

// Offer expiration bounds.
const (
	DefaultExpirationHours = 24
	MaxExpirationHours     = 7 * 24
)

// CreateOffer posts a trade offer. The owner's inventory must cover every
// offering line at creation time; the items are not held back (no escrow),
// so the offering side is re-validated when someone accepts.
func (s *Service) CreateOffer(ctx context.Context, ownerID int64, offering, requesting []model.ItemStack, message string, expirationHours int) (*model.TradeOffer, error) {
	if err := s.validateStacks(offering); err != nil {
		return nil, err
	}
	if err := s.validateStacks(requesting); err != nil {
		return nil, err
	}
	if expirationHours == 0 {
		expirationHours = DefaultExpirationHours
	}
	if expirationHours < 0 || expirationHours > MaxExpirationHours {
		return nil, &InvalidDataError{Reason: "expiration_hours out of range"}
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := checkItems(ctx, tx, ownerID, offering); err != nil {
		return nil, err
	}

	now := s.now()
	o := &model.TradeOffer{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Offering:   offering,
		Requesting: requesting,
		Status:     model.OfferStatusActive,
		Message:    message,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Duration(expirationHours) * time.Hour),
	}
	if err := store.InsertOffer(ctx, tx, o); err != nil {
		return nil, err
	}
	if err := commit(tx); err != nil {
		return nil, err
	}

	slog.Info("trade offer created", "offer", o.ID, "owner", ownerID, "expires", o.ExpiresAt)
	s.publish(feed.EventOfferCreated, o)
	return o, nil
}

// Offer returns one offer, lazily expiring it if its deadline has passed.
func (s *Service) Offer(ctx context.Context, id string) (*model.TradeOffer, error) {
	o, err := store.GetOffer(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOfferNotFound
	}
	if o.Status == model.OfferStatusActive && o.Expired(s.now()) {
		if err := store.ExpireOffer(ctx, s.DB, o.ID); err != nil {
			return nil, err
		}
		o.Status = model.OfferStatusExpired
	}
	return o, nil
}

// AvailableOffers lists active, unexpired offers from other players.
func (s *Service) AvailableOffers(ctx context.Context, viewerID int64) ([]model.TradeOffer, error) {
	now := s.now()
	if err := store.ExpireDueOffers(ctx, s.DB, now); err != nil {
		return nil, err
	}
	return store.ListAvailableOffers(ctx, s.DB, viewerID, now)
}

// MyOffers lists the caller's offers, all statuses.
func (s *Service) MyOffers(ctx context.Context, ownerID int64) ([]model.TradeOffer, error) {
	if err := store.ExpireDueOffers(ctx, s.DB, s.now()); err != nil {
		return nil, err
	}
	return store.ListOffersByOwner(ctx, s.DB, ownerID)
}

// AcceptOffer executes the swap: the offering stacks move owner → accepter
// and the requesting stacks move accepter → owner, the offer flips to
// completed, and a history row snapshots both sides — all in one
// transaction. The status flip is a compare-and-set, so of two concurrent
// accepts exactly one commits the swap.
func (s *Service) AcceptOffer(ctx context.Context, accepterID int64, offerID string) (*model.TradeHistory, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	o, err := store.GetOffer(ctx, tx, offerID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOfferNotFound
	}

	switch o.Status {
	case model.OfferStatusCompleted:
		return nil, ErrOfferAlreadyCompleted
	case model.OfferStatusCancelled:
		return nil, ErrOfferCancelled
	case model.OfferStatusExpired:
		return nil, ErrOfferExpired
	}

	now := s.now()
	if o.Expired(now) {
		// Lazy expiry: persist the terminal state so later readers see it.
		if err := store.ExpireOffer(ctx, tx, o.ID); err != nil {
			return nil, err
		}
		if err := commit(tx); err != nil {
			return nil, err
		}
		return nil, ErrOfferExpired
	}

	if o.OwnerID == accepterID {
		return nil, ErrCannotAcceptOwnOffer
	}

	accepter, err := store.GetPlayer(ctx, tx, accepterID)
	if err != nil {
		return nil, err
	}
	if accepter == nil || accepter.DeletedAt != nil {
		return nil, ErrNotParticipant
	}

	// The accepter must cover the requesting side; the owner must still
	// cover the offering side (nothing was escrowed at creation).
	if err := checkItems(ctx, tx, accepterID, o.Requesting); err != nil {
		return nil, err
	}
	if err := checkItems(ctx, tx, o.OwnerID, o.Offering); err != nil {
		return nil, err
	}

	won, err := store.CompleteOfferCAS(ctx, tx, o.ID, now, accepterID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrOfferAlreadyCompleted
	}

	if err := store.DebitStacks(ctx, tx, o.OwnerID, o.Offering); err != nil {
		return nil, err
	}
	if err := store.CreditStacks(ctx, tx, accepterID, o.Offering); err != nil {
		return nil, err
	}
	if err := store.DebitStacks(ctx, tx, accepterID, o.Requesting); err != nil {
		return nil, err
	}
	if err := store.CreditStacks(ctx, tx, o.OwnerID, o.Requesting); err != nil {
		return nil, err
	}

	h := &model.TradeHistory{
		ID:             uuid.NewString(),
		OfferID:        o.ID,
		SellerID:       o.OwnerID,
		SellerUsername: o.OwnerUsername,
		BuyerID:        accepter.ID,
		BuyerUsername:  accepter.Username,
		Offered:        o.Offering,
		Requested:      o.Requesting,
		CompletedAt:    now,
	}
	if err := store.InsertHistory(ctx, tx, h); err != nil {
		return nil, err
	}
	if err := commit(tx); err != nil {
		return nil, err
	}

	slog.Info("trade offer accepted", "offer", o.ID, "seller", o.OwnerID, "buyer", accepterID)
	s.publish(feed.EventOfferCompleted, h)
	return h, nil
}

// CancelOffer cancels the caller's own active offer. No inventory change;
// nothing was held.
func (s *Service) CancelOffer(ctx context.Context, callerID int64, offerID string) (*model.TradeOffer, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	o, err := store.GetOffer(ctx, tx, offerID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOfferNotFound
	}
	if o.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	switch o.Status {
	case model.OfferStatusCompleted:
		return nil, ErrOfferAlreadyCompleted
	case model.OfferStatusCancelled:
		return nil, ErrOfferCancelled
	case model.OfferStatusExpired:
		return nil, ErrOfferExpired
	}

	if o.Expired(s.now()) {
		if err := store.ExpireOffer(ctx, tx, o.ID); err != nil {
			return nil, err
		}
		if err := commit(tx); err != nil {
			return nil, err
		}
		return nil, ErrOfferExpired
	}

	won, err := store.CancelOfferCAS(ctx, tx, o.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrOfferAlreadyCompleted
	}
	if err := commit(tx); err != nil {
		return nil, err
	}

	o.Status = model.OfferStatusCancelled

	slog.Info("trade offer cancelled", "offer", o.ID, "owner", callerID)
	s.publish(feed.EventOfferCancelled, o)
	return o, nil
}

// TradeHistory lists the caller's completed trades.
func (s *Service) TradeHistory(ctx context.Context, playerID int64) ([]model.TradeHistory, error) {
	return store.ListHistoryByParticipant(ctx, s.DB, playerID)
}

// RateTrade records a participant's rating for a completed trade. A
// party's rating is their latest submission; re-rating overwrites.
func (s *Service) RateTrade(ctx context.Context, raterID int64, historyID string, rating int, comment string) (*model.TradeHistory, error) {
	if rating < 1 || rating > 5 {
		return nil, &InvalidDataError{Reason: "rating must be between 1 and 5"}
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	h, err := store.GetHistory(ctx, tx, historyID)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ErrHistoryNotFound
	}

	switch raterID {
	case h.SellerID:
		err = store.SetSellerRating(ctx, tx, h.ID, rating, comment)
		h.SellerRating = &rating
		h.SellerComment = comment
	case h.BuyerID:
		err = store.SetBuyerRating(ctx, tx, h.ID, rating, comment)
		h.BuyerRating = &rating
		h.BuyerComment = comment
	default:
		return nil, ErrNotParticipant
	}
	if err != nil {
		return nil, err
	}
	if err := commit(tx); err != nil {
		return nil, err
	}

	return h, nil
}
