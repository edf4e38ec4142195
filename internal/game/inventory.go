package game

import (
	"context"

	"github.com/jusmik/outpost/internal/model"
	"github.com/jusmik/outpost/internal/store"
)

// Inventory returns a player's ledger with item names filled in from the
// catalog.
func (s *Service) Inventory(ctx context.Context, playerID int64) ([]model.InventoryEntry, error) {
	entries, err := store.OwnerInventory(ctx, s.DB, playerID)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if def, ok := s.Catalog.Item(entries[i].ItemID); ok {
			entries[i].ItemName = def.Name
		}
	}
	return entries, nil
}

// Quantity returns how many of an item a player holds, summed across
// qualities.
func (s *Service) Quantity(ctx context.Context, playerID int64, itemID string) (int, error) {
	return store.Quantity(ctx, s.DB, playerID, itemID)
}

// GrantItems credits stacks to a player. Admin tooling: seeding, support,
// loot delivery.
func (s *Service) GrantItems(ctx context.Context, playerID int64, stacks []model.ItemStack) error {
	if err := s.validateStacks(stacks); err != nil {
		return err
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := store.CreditStacks(ctx, tx, playerID, stacks); err != nil {
		return err
	}
	return commit(tx)
}

// validateStacks checks stack lines against the catalog before any
// lifecycle operation touches the ledger.
func (s *Service) validateStacks(stacks []model.ItemStack) error {
	if len(stacks) == 0 {
		return &InvalidDataError{Reason: "item list is empty"}
	}
	for _, st := range stacks {
		if _, ok := s.Catalog.Item(st.ItemID); !ok {
			return &InvalidDataError{Reason: "unknown item " + st.ItemID}
		}
		if st.Quantity <= 0 {
			return &InvalidDataError{Reason: "quantity must be positive for " + st.ItemID}
		}
		if st.Quality < 0 || st.Quality > 4 {
			return &InvalidDataError{Reason: "quality out of range for " + st.ItemID}
		}
	}
	return nil
}
