package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jusmik/outpost/internal/model"
)

// Quantity returns the quantity of an item held by an owner, summed across
// qualities. Returns 0 if no entry exists.
func Quantity(ctx context.Context, q DBTX, ownerID int64, itemID string) (int, error) {
	var total int
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM inventory WHERE owner_id = ? AND item_id = ?`,
		ownerID, itemID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("getting quantity: %w", err)
	}
	return total, nil
}

// OwnerInventory returns all inventory entries for an owner.
func OwnerInventory(ctx context.Context, q DBTX, ownerID int64) ([]model.InventoryEntry, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT owner_id, item_id, quality, quantity
		 FROM inventory WHERE owner_id = ?
		 ORDER BY item_id, quality`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting owner inventory: %w", err)
	}
	defer rows.Close()

	var entries []model.InventoryEntry
	for rows.Next() {
		var e model.InventoryEntry
		if err := rows.Scan(&e.OwnerID, &e.ItemID, &e.Quality, &e.Quantity); err != nil {
			return nil, fmt.Errorf("scanning inventory: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CreditStacks increments inventory for each stack, creating entries as
// needed. A stack's quality selects the ledger row; differing qualities
// stay separate rows.
func CreditStacks(ctx context.Context, q DBTX, ownerID int64, stacks []model.ItemStack) error {
	for _, s := range stacks {
		if s.Quantity <= 0 {
			return fmt.Errorf("crediting %s: quantity must be positive", s.ItemID)
		}
		_, err := q.ExecContext(ctx,
			`INSERT INTO inventory (owner_id, item_id, quality, quantity) VALUES (?, ?, ?, ?)
			 ON CONFLICT (owner_id, item_id, quality) DO UPDATE SET quantity = quantity + ?`,
			ownerID, s.ItemID, s.Quality, s.Quantity, s.Quantity,
		)
		if err != nil {
			return fmt.Errorf("crediting %s: %w", s.ItemID, err)
		}
	}
	return nil
}

// DebitStacks decrements inventory for each stack, consuming lowest-quality
// rows first and deleting rows that reach zero. Callers validate totals up
// front; a short line here still fails before any of that line is applied,
// and the surrounding transaction discards earlier lines.
func DebitStacks(ctx context.Context, q DBTX, ownerID int64, stacks []model.ItemStack) error {
	for _, s := range stacks {
		if s.Quantity <= 0 {
			return fmt.Errorf("debiting %s: quantity must be positive", s.ItemID)
		}
		if err := debitStack(ctx, q, ownerID, s); err != nil {
			return err
		}
	}
	return nil
}

func debitStack(ctx context.Context, q DBTX, ownerID int64, s model.ItemStack) error {
	rows, err := q.QueryContext(ctx,
		`SELECT quality, quantity FROM inventory
		 WHERE owner_id = ? AND item_id = ?
		 ORDER BY quality`, ownerID, s.ItemID,
	)
	if err != nil {
		return fmt.Errorf("debiting %s: %w", s.ItemID, err)
	}

	type slot struct {
		quality  int
		quantity int
	}
	var slots []slot
	available := 0
	for rows.Next() {
		var sl slot
		if err := rows.Scan(&sl.quality, &sl.quantity); err != nil {
			rows.Close()
			return fmt.Errorf("scanning inventory slot: %w", err)
		}
		slots = append(slots, sl)
		available += sl.quantity
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("debiting %s: %w", s.ItemID, err)
	}

	if available < s.Quantity {
		return fmt.Errorf("insufficient quantity of %s: have %d, need %d", s.ItemID, available, s.Quantity)
	}

	remaining := s.Quantity
	for _, sl := range slots {
		if remaining == 0 {
			break
		}
		take := sl.quantity
		if take > remaining {
			take = remaining
		}

		if take == sl.quantity {
			_, err = q.ExecContext(ctx,
				`DELETE FROM inventory WHERE owner_id = ? AND item_id = ? AND quality = ?`,
				ownerID, s.ItemID, sl.quality,
			)
		} else {
			_, err = q.ExecContext(ctx,
				`UPDATE inventory SET quantity = quantity - ? WHERE owner_id = ? AND item_id = ? AND quality = ?`,
				take, ownerID, s.ItemID, sl.quality,
			)
		}
		if err != nil {
			return fmt.Errorf("debiting %s: %w", s.ItemID, err)
		}
		remaining -= take
	}
	return nil
}

// entryQuantity returns the quantity of a single (owner, item, quality) row.
// Used by tests; the game layer works with summed quantities.
func entryQuantity(ctx context.Context, q DBTX, ownerID int64, itemID string, quality int) (int, error) {
	var quantity int
	err := q.QueryRowContext(ctx,
		`SELECT quantity FROM inventory WHERE owner_id = ? AND item_id = ? AND quality = ?`,
		ownerID, itemID, quality,
	).Scan(&quantity)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("getting entry quantity: %w", err)
	}
	return quantity, nil
}
