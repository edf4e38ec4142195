package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jusmik/outpost/internal/db"
	"github.com/jusmik/outpost/internal/model"
)

func testOffer(ownerID int64, expiresAt time.Time) *model.TradeOffer {
	return &model.TradeOffer{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Offering:   []model.ItemStack{{ItemID: "wood", Quantity: 10}},
		Requesting: []model.ItemStack{{ItemID: "stone", Quantity: 5}},
		Status:     model.OfferStatusActive,
		Message:    "wood for stone",
		CreatedAt:  time.Now().UTC(),
		ExpiresAt:  expiresAt,
	}
}

func TestInsertAndGetOffer(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seller := testPlayer(t, database, "seller")

	o := testOffer(seller.ID, time.Now().UTC().Add(24*time.Hour))
	if err := InsertOffer(ctx, database, o); err != nil {
		t.Fatalf("InsertOffer: %v", err)
	}

	got, err := GetOffer(ctx, database, o.ID)
	if err != nil {
		t.Fatalf("GetOffer: %v", err)
	}
	if got == nil {
		t.Fatal("expected offer, got nil")
	}
	if got.OwnerUsername != "seller" {
		t.Errorf("expected joined username seller, got %q", got.OwnerUsername)
	}
	if len(got.Offering) != 1 || got.Offering[0].ItemID != "wood" || got.Offering[0].Quantity != 10 {
		t.Errorf("unexpected offering: %+v", got.Offering)
	}
}

func TestListAvailableOffersExcludesOwnAndExpired(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seller := testPlayer(t, database, "seller")
	buyer := testPlayer(t, database, "buyer")

	now := time.Now().UTC()
	InsertOffer(ctx, database, testOffer(seller.ID, now.Add(24*time.Hour)))
	InsertOffer(ctx, database, testOffer(seller.ID, now.Add(-time.Hour)))
	InsertOffer(ctx, database, testOffer(buyer.ID, now.Add(24*time.Hour)))

	offers, err := ListAvailableOffers(ctx, database, buyer.ID, now)
	if err != nil {
		t.Fatalf("ListAvailableOffers: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("expected 1 available offer, got %d", len(offers))
	}
	if offers[0].OwnerID != seller.ID {
		t.Errorf("expected seller's offer, got owner %d", offers[0].OwnerID)
	}
}

func TestCompleteOfferCASWinsOnce(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seller := testPlayer(t, database, "seller")
	buyer := testPlayer(t, database, "buyer")

	o := testOffer(seller.ID, time.Now().UTC().Add(24*time.Hour))
	InsertOffer(ctx, database, o)

	won, err := CompleteOfferCAS(ctx, database, o.ID, time.Now().UTC(), buyer.ID)
	if err != nil {
		t.Fatalf("CompleteOfferCAS: %v", err)
	}
	if !won {
		t.Fatal("expected first completion to win")
	}

	won, err = CompleteOfferCAS(ctx, database, o.ID, time.Now().UTC(), buyer.ID)
	if err != nil {
		t.Fatalf("CompleteOfferCAS (repeat): %v", err)
	}
	if won {
		t.Error("expected second completion to lose")
	}

	got, _ := GetOffer(ctx, database, o.ID)
	if got.Status != model.OfferStatusCompleted {
		t.Errorf("expected status completed, got %q", got.Status)
	}
	if got.CompletedBy == nil || *got.CompletedBy != buyer.ID {
		t.Errorf("expected completed_by %d, got %v", buyer.ID, got.CompletedBy)
	}
}

func TestCancelOfferCASOnlyFlipsActive(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seller := testPlayer(t, database, "seller")

	o := testOffer(seller.ID, time.Now().UTC().Add(24*time.Hour))
	InsertOffer(ctx, database, o)

	won, err := CancelOfferCAS(ctx, database, o.ID)
	if err != nil {
		t.Fatalf("CancelOfferCAS: %v", err)
	}
	if !won {
		t.Fatal("expected cancel to win on active offer")
	}

	won, _ = CancelOfferCAS(ctx, database, o.ID)
	if won {
		t.Error("expected cancel to lose on cancelled offer")
	}
}

func TestExpireDueOffers(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seller := testPlayer(t, database, "seller")

	now := time.Now().UTC()
	due := testOffer(seller.ID, now.Add(-time.Minute))
	fresh := testOffer(seller.ID, now.Add(24*time.Hour))
	InsertOffer(ctx, database, due)
	InsertOffer(ctx, database, fresh)

	if err := ExpireDueOffers(ctx, database, now); err != nil {
		t.Fatalf("ExpireDueOffers: %v", err)
	}

	got, _ := GetOffer(ctx, database, due.ID)
	if got.Status != model.OfferStatusExpired {
		t.Errorf("expected due offer expired, got %q", got.Status)
	}
	got, _ = GetOffer(ctx, database, fresh.ID)
	if got.Status != model.OfferStatusActive {
		t.Errorf("expected fresh offer still active, got %q", got.Status)
	}
}

func TestTradeHistoryRatings(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	seller := testPlayer(t, database, "seller")
	buyer := testPlayer(t, database, "buyer")

	h := &model.TradeHistory{
		ID:             uuid.NewString(),
		OfferID:        uuid.NewString(),
		SellerID:       seller.ID,
		SellerUsername: seller.Username,
		BuyerID:        buyer.ID,
		BuyerUsername:  buyer.Username,
		Offered:        []model.ItemStack{{ItemID: "wood", Quantity: 10}},
		Requested:      []model.ItemStack{{ItemID: "stone", Quantity: 5}},
		CompletedAt:    time.Now().UTC(),
	}
	if err := InsertHistory(ctx, database, h); err != nil {
		t.Fatalf("InsertHistory: %v", err)
	}

	if err := SetBuyerRating(ctx, database, h.ID, 4, "fair trade"); err != nil {
		t.Fatalf("SetBuyerRating: %v", err)
	}
	// Re-rating overwrites.
	if err := SetBuyerRating(ctx, database, h.ID, 5, "great trade"); err != nil {
		t.Fatalf("SetBuyerRating (overwrite): %v", err)
	}

	got, err := GetHistory(ctx, database, h.ID)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if got.BuyerRating == nil || *got.BuyerRating != 5 {
		t.Errorf("expected buyer rating 5, got %v", got.BuyerRating)
	}
	if got.BuyerComment != "great trade" {
		t.Errorf("expected overwritten comment, got %q", got.BuyerComment)
	}
	if got.SellerRating != nil {
		t.Errorf("expected seller rating unset, got %v", got.SellerRating)
	}

	records, err := ListHistoryByParticipant(ctx, database, seller.ID)
	if err != nil {
		t.Fatalf("ListHistoryByParticipant: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 history record for seller, got %d", len(records))
	}
}
