package game

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/jusmik/outpost/internal/model"
)

// TestLedgerNeverGoesNegative drives a random mix of grants, builds and
// trades and checks after every operation that no inventory row dropped to
// zero or below. Failed operations must leave the ledger untouched, so the
// running totals only change on success.
func TestLedgerNeverGoesNegative(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	rng := rand.New(rand.NewSource(1))
	players := []*model.Player{
		newTestPlayer(t, svc.DB, "nomad"),
		newTestPlayer(t, svc.DB, "scavenger"),
		newTestPlayer(t, svc.DB, "trader"),
	}
	items := []string{"wood", "stone", "scrap_metal"}

	checkLedger := func(step int) {
		t.Helper()
		for _, p := range players {
			entries, err := svc.Inventory(ctx, p.ID)
			if err != nil {
				t.Fatalf("step %d: Inventory: %v", step, err)
			}
			for _, e := range entries {
				if e.Quantity <= 0 {
					t.Fatalf("step %d: player %d holds %d of %s", step, p.ID, e.Quantity, e.ItemID)
				}
			}
		}
	}

	var openOffers []string
	for step := 0; step < 200; step++ {
		p := players[rng.Intn(len(players))]

		switch rng.Intn(4) {
		case 0: // grant a small stack
			err := svc.GrantItems(ctx, p.ID, []model.ItemStack{
				{ItemID: items[rng.Intn(len(items))], Quantity: 1 + rng.Intn(10)},
			})
			if err != nil {
				t.Fatalf("step %d: GrantItems: %v", step, err)
			}

		case 1: // try to build; often short on resources
			_, err := svc.StartConstruction(ctx, p.ID, "territory-1", "shelter_t1", 0, 0)
			if err != nil && !isLifecycleError(err) {
				t.Fatalf("step %d: StartConstruction: %v", step, err)
			}

		case 2: // post an offer; may be short on the offering side
			o, err := svc.CreateOffer(ctx, p.ID,
				[]model.ItemStack{{ItemID: items[rng.Intn(len(items))], Quantity: 1 + rng.Intn(5)}},
				[]model.ItemStack{{ItemID: items[rng.Intn(len(items))], Quantity: 1 + rng.Intn(5)}},
				"", 0,
			)
			if err == nil {
				openOffers = append(openOffers, o.ID)
			} else if !isLifecycleError(err) {
				t.Fatalf("step %d: CreateOffer: %v", step, err)
			}

		case 3: // try to accept a random open offer
			if len(openOffers) == 0 {
				continue
			}
			id := openOffers[rng.Intn(len(openOffers))]
			_, err := svc.AcceptOffer(ctx, p.ID, id)
			if err != nil && !isLifecycleError(err) {
				t.Fatalf("step %d: AcceptOffer: %v", step, err)
			}
		}

		if rng.Intn(20) == 0 {
			clock.Advance(3 * time.Hour)
		}

		checkLedger(step)
	}
}

// isLifecycleError reports whether the error is an expected game-rule
// rejection rather than a storage failure.
func isLifecycleError(err error) bool {
	var (
		insufficientRes   *InsufficientResourcesError
		insufficientItems *InsufficientItemsError
		maxBuildings      *MaxBuildingsError
		invalid           *InvalidDataError
	)
	switch {
	case errors.As(err, &insufficientRes),
		errors.As(err, &insufficientItems),
		errors.As(err, &maxBuildings),
		errors.As(err, &invalid):
		return true
	}
	return errors.Is(err, ErrOfferExpired) ||
		errors.Is(err, ErrOfferAlreadyCompleted) ||
		errors.Is(err, ErrOfferCancelled) ||
		errors.Is(err, ErrCannotAcceptOwnOffer) ||
		errors.Is(err, ErrOfferNotFound)
}
