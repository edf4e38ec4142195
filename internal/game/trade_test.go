package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jusmik/outpost/internal/model"
	"github.com/jusmik/outpost/internal/store"
)

func woodForStone(t *testing.T, svc *Service, sellerID int64) *model.TradeOffer {
	t.Helper()
	o, err := svc.CreateOffer(context.Background(), sellerID,
		[]model.ItemStack{{ItemID: "wood", Quantity: 10}},
		[]model.ItemStack{{ItemID: "stone", Quantity: 5}},
		"wood for stone", 0,
	)
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}
	return o
}

func TestCreateOfferRequiresOfferedItems(t *testing.T) {
	svc, _ := newTestService(t)
	seller := newTestPlayer(t, svc.DB, "seller")
	grant(t, svc, seller.ID, model.ItemStack{ItemID: "wood", Quantity: 4})

	_, err := svc.CreateOffer(context.Background(), seller.ID,
		[]model.ItemStack{{ItemID: "wood", Quantity: 10}},
		[]model.ItemStack{{ItemID: "stone", Quantity: 5}},
		"", 0,
	)
	var short *InsufficientItemsError
	if !errors.As(err, &short) {
		t.Fatalf("expected InsufficientItemsError, got %v", err)
	}
	if short.ItemID != "wood" || short.Required != 10 || short.Owned != 4 {
		t.Errorf("unexpected shortfall: %+v", short)
	}
}

func TestCreateOfferDefaultsAndBoundsExpiration(t *testing.T) {
	svc, clock := newTestService(t)
	seller := newTestPlayer(t, svc.DB, "seller")
	grant(t, svc, seller.ID, model.ItemStack{ItemID: "wood", Quantity: 10})

	o := woodForStone(t, svc, seller.ID)
	if want := clock.Now().Add(DefaultExpirationHours * time.Hour); !o.ExpiresAt.Equal(want) {
		t.Errorf("expected default expiry %v, got %v", want, o.ExpiresAt)
	}

	_, err := svc.CreateOffer(context.Background(), seller.ID,
		[]model.ItemStack{{ItemID: "wood", Quantity: 10}},
		[]model.ItemStack{{ItemID: "stone", Quantity: 5}},
		"", MaxExpirationHours+1,
	)
	var invalid *InvalidDataError
	if !errors.As(err, &invalid) {
		t.Errorf("expected InvalidDataError for out-of-range expiry, got %v", err)
	}
}

func TestAcceptOfferSwapsBothSides(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seller := newTestPlayer(t, svc.DB, "seller")
	buyer := newTestPlayer(t, svc.DB, "buyer")
	grant(t, svc, seller.ID, model.ItemStack{ItemID: "wood", Quantity: 10})
	grant(t, svc, buyer.ID, model.ItemStack{ItemID: "stone", Quantity: 5})

	o := woodForStone(t, svc, seller.ID)

	record, err := svc.AcceptOffer(ctx, buyer.ID, o.ID)
	if err != nil {
		t.Fatalf("AcceptOffer: %v", err)
	}
	if record.SellerUsername != "seller" || record.BuyerUsername != "buyer" {
		t.Errorf("unexpected history participants: %+v", record)
	}

	// Exact swap, no duplication, no loss.
	for _, check := range []struct {
		player int64
		item   string
		want   int
	}{
		{seller.ID, "wood", 0},
		{seller.ID, "stone", 5},
		{buyer.ID, "wood", 10},
		{buyer.ID, "stone", 0},
	} {
		if got := quantity(t, svc, check.player, check.item); got != check.want {
			t.Errorf("player %d: expected %d %s, got %d", check.player, check.want, check.item, got)
		}
	}

	got, err := svc.Offer(ctx, o.ID)
	if err != nil {
		t.Fatalf("Offer: %v", err)
	}
	if got.Status != model.OfferStatusCompleted {
		t.Errorf("expected status completed, got %q", got.Status)
	}

	// Accepting a completed offer fails.
	if _, err := svc.AcceptOffer(ctx, buyer.ID, o.ID); !errors.Is(err, ErrOfferAlreadyCompleted) {
		t.Errorf("expected ErrOfferAlreadyCompleted, got %v", err)
	}
}

func TestAcceptOwnOfferFails(t *testing.T) {
	svc, _ := newTestService(t)
	seller := newTestPlayer(t, svc.DB, "seller")
	grant(t, svc, seller.ID, model.ItemStack{ItemID: "wood", Quantity: 10})

	o := woodForStone(t, svc, seller.ID)
	if _, err := svc.AcceptOffer(context.Background(), seller.ID, o.ID); !errors.Is(err, ErrCannotAcceptOwnOffer) {
		t.Errorf("expected ErrCannotAcceptOwnOffer, got %v", err)
	}
}

func TestAcceptOfferRevalidatesSellerSide(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seller := newTestPlayer(t, svc.DB, "seller")
	buyer := newTestPlayer(t, svc.DB, "buyer")
	grant(t, svc, seller.ID, model.ItemStack{ItemID: "wood", Quantity: 10})
	grant(t, svc, buyer.ID, model.ItemStack{ItemID: "stone", Quantity: 5})

	o := woodForStone(t, svc, seller.ID)

	// Nothing is escrowed: the seller spends the wood after posting.
	if err := store.DebitStacks(ctx, svc.DB, seller.ID, []model.ItemStack{{ItemID: "wood", Quantity: 8}}); err != nil {
		t.Fatalf("DebitStacks: %v", err)
	}

	_, err := svc.AcceptOffer(ctx, buyer.ID, o.ID)
	var short *InsufficientItemsError
	if !errors.As(err, &short) {
		t.Fatalf("expected InsufficientItemsError, got %v", err)
	}
	if short.ItemID != "wood" {
		t.Errorf("expected shortfall on wood, got %+v", short)
	}

	// The offer stays active and the buyer keeps their stone.
	got, _ := svc.Offer(ctx, o.ID)
	if got.Status != model.OfferStatusActive {
		t.Errorf("expected offer still active, got %q", got.Status)
	}
	if got := quantity(t, svc, buyer.ID, "stone"); got != 5 {
		t.Errorf("expected buyer's stone untouched at 5, got %d", got)
	}
}

func TestOfferExpiresLazily(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	seller := newTestPlayer(t, svc.DB, "seller")
	buyer := newTestPlayer(t, svc.DB, "buyer")
	grant(t, svc, seller.ID, model.ItemStack{ItemID: "wood", Quantity: 10})
	grant(t, svc, buyer.ID, model.ItemStack{ItemID: "stone", Quantity: 5})

	o, err := svc.CreateOffer(ctx, seller.ID,
		[]model.ItemStack{{ItemID: "wood", Quantity: 10}},
		[]model.ItemStack{{ItemID: "stone", Quantity: 5}},
		"", 1,
	)
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}

	clock.Advance(time.Hour + time.Second)

	if _, err := svc.AcceptOffer(ctx, buyer.ID, o.ID); !errors.Is(err, ErrOfferExpired) {
		t.Fatalf("expected ErrOfferExpired, got %v", err)
	}

	// The failed accept persisted the terminal state.
	got, _ := svc.Offer(ctx, o.ID)
	if got.Status != model.OfferStatusExpired {
		t.Errorf("expected status expired, got %q", got.Status)
	}

	// Expired offers never show up in the listing.
	offers, err := svc.AvailableOffers(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("AvailableOffers: %v", err)
	}
	if len(offers) != 0 {
		t.Errorf("expected no available offers, got %d", len(offers))
	}
}

func TestDoubleAcceptHasOneWinner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seller := newTestPlayer(t, svc.DB, "seller")
	first := newTestPlayer(t, svc.DB, "first")
	second := newTestPlayer(t, svc.DB, "second")
	grant(t, svc, seller.ID, model.ItemStack{ItemID: "wood", Quantity: 10})
	grant(t, svc, first.ID, model.ItemStack{ItemID: "stone", Quantity: 5})
	grant(t, svc, second.ID, model.ItemStack{ItemID: "stone", Quantity: 5})

	o := woodForStone(t, svc, seller.ID)

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i, buyer := range []int64{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, buyerID int64) {
			defer wg.Done()
			_, results[i] = svc.AcceptOffer(ctx, buyerID, o.ID)
		}(i, buyer)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly 1 winning accept, got %d (errors: %v)", wins, results)
	}

	// The swap happened exactly once.
	if got := quantity(t, svc, seller.ID, "wood"); got != 0 {
		t.Errorf("expected seller out of wood, got %d", got)
	}
	if got := quantity(t, svc, seller.ID, "stone"); got != 5 {
		t.Errorf("expected seller credited 5 stone exactly once, got %d", got)
	}
	firstWood := quantity(t, svc, first.ID, "wood")
	secondWood := quantity(t, svc, second.ID, "wood")
	if firstWood+secondWood != 10 || (firstWood != 0 && secondWood != 0) {
		t.Errorf("expected one buyer to hold all 10 wood, got %d and %d", firstWood, secondWood)
	}
}

func TestCancelOffer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seller := newTestPlayer(t, svc.DB, "seller")
	buyer := newTestPlayer(t, svc.DB, "buyer")
	grant(t, svc, seller.ID, model.ItemStack{ItemID: "wood", Quantity: 10})
	grant(t, svc, buyer.ID, model.ItemStack{ItemID: "stone", Quantity: 5})

	o := woodForStone(t, svc, seller.ID)

	// Only the owner can cancel.
	if _, err := svc.CancelOffer(ctx, buyer.ID, o.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	cancelled, err := svc.CancelOffer(ctx, seller.ID, o.ID)
	if err != nil {
		t.Fatalf("CancelOffer: %v", err)
	}
	if cancelled.Status != model.OfferStatusCancelled {
		t.Errorf("expected status cancelled, got %q", cancelled.Status)
	}

	// Cancellation released nothing because nothing was held.
	if got := quantity(t, svc, seller.ID, "wood"); got != 10 {
		t.Errorf("expected seller's wood untouched at 10, got %d", got)
	}

	if _, err := svc.AcceptOffer(ctx, buyer.ID, o.ID); !errors.Is(err, ErrOfferCancelled) {
		t.Errorf("expected ErrOfferCancelled, got %v", err)
	}
}

func TestMyOffersIncludesAllStatuses(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seller := newTestPlayer(t, svc.DB, "seller")
	grant(t, svc, seller.ID, model.ItemStack{ItemID: "wood", Quantity: 20})

	active := woodForStone(t, svc, seller.ID)
	cancelled := woodForStone(t, svc, seller.ID)
	svc.CancelOffer(ctx, seller.ID, cancelled.ID)

	offers, err := svc.MyOffers(ctx, seller.ID)
	if err != nil {
		t.Fatalf("MyOffers: %v", err)
	}
	if len(offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(offers))
	}

	// Other players only ever see the active one.
	buyer := newTestPlayer(t, svc.DB, "buyer")
	available, _ := svc.AvailableOffers(ctx, buyer.ID)
	if len(available) != 1 || available[0].ID != active.ID {
		t.Errorf("expected only the active offer available, got %+v", available)
	}
}

func TestRateTrade(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seller := newTestPlayer(t, svc.DB, "seller")
	buyer := newTestPlayer(t, svc.DB, "buyer")
	outsider := newTestPlayer(t, svc.DB, "outsider")
	grant(t, svc, seller.ID, model.ItemStack{ItemID: "wood", Quantity: 10})
	grant(t, svc, buyer.ID, model.ItemStack{ItemID: "stone", Quantity: 5})

	o := woodForStone(t, svc, seller.ID)
	record, err := svc.AcceptOffer(ctx, buyer.ID, o.ID)
	if err != nil {
		t.Fatalf("AcceptOffer: %v", err)
	}

	var invalid *InvalidDataError
	if _, err := svc.RateTrade(ctx, buyer.ID, record.ID, 0, ""); !errors.As(err, &invalid) {
		t.Errorf("expected InvalidDataError for rating 0, got %v", err)
	}
	if _, err := svc.RateTrade(ctx, outsider.ID, record.ID, 3, ""); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("expected ErrNotParticipant, got %v", err)
	}

	rated, err := svc.RateTrade(ctx, buyer.ID, record.ID, 4, "fair")
	if err != nil {
		t.Fatalf("RateTrade: %v", err)
	}
	if rated.BuyerRating == nil || *rated.BuyerRating != 4 {
		t.Errorf("expected buyer rating 4, got %v", rated.BuyerRating)
	}

	// Re-rating overwrites.
	rated, err = svc.RateTrade(ctx, buyer.ID, record.ID, 5, "great")
	if err != nil {
		t.Fatalf("RateTrade (overwrite): %v", err)
	}
	if *rated.BuyerRating != 5 || rated.BuyerComment != "great" {
		t.Errorf("expected overwritten rating, got %v %q", rated.BuyerRating, rated.BuyerComment)
	}

	// Both parties rate independently.
	rated, err = svc.RateTrade(ctx, seller.ID, record.ID, 2, "slow")
	if err != nil {
		t.Fatalf("RateTrade (seller): %v", err)
	}
	if rated.SellerRating == nil || *rated.SellerRating != 2 {
		t.Errorf("expected seller rating 2, got %v", rated.SellerRating)
	}

	records, err := svc.TradeHistory(ctx, seller.ID)
	if err != nil {
		t.Fatalf("TradeHistory: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 history record, got %d", len(records))
	}
}
