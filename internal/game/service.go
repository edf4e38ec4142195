// Package game implements the lifecycle core: the inventory ledger and the
// construction and trade state machines. Every operation runs as one SQL
// transaction; no sub-step is observable half-applied.
package game

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/jusmik/outpost/internal/catalog"
	"github.com/jusmik/outpost/internal/feed"
	"github.com/jusmik/outpost/internal/model"
	"github.com/jusmik/outpost/internal/store"
)

// Service holds the shared dependencies of the lifecycle operations. It is
// constructed once at startup and passed explicitly; there are no package
// globals.
type Service struct {
	DB      *sql.DB
	Catalog *catalog.Catalog
	Feed    *feed.Hub

	// Now is the clock; tests override it to drive expiry and completion.
	Now func() time.Time
}

// NewService creates a game service. The feed hub may be nil.
func NewService(db *sql.DB, cat *catalog.Catalog, hub *feed.Hub) *Service {
	return &Service{DB: db, Catalog: cat, Feed: hub, Now: time.Now}
}

func (s *Service) now() time.Time {
	return s.Now().UTC()
}

func (s *Service) publish(eventType string, data any) {
	if s.Feed != nil {
		s.Feed.Publish(eventType, data)
	}
}

// begin opens a write transaction.
func (s *Service) begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return tx, nil
}

// commit finalizes a transaction.
func commit(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// costStacks converts a template's resource map to a deterministic stack
// list.
func costStacks(resources map[string]int) []model.ItemStack {
	stacks := make([]model.ItemStack, 0, len(resources))
	for itemID, amount := range resources {
		stacks = append(stacks, model.ItemStack{ItemID: itemID, Quantity: amount})
	}
	sort.Slice(stacks, func(i, j int) bool { return stacks[i].ItemID < stacks[j].ItemID })
	return stacks
}

// checkResources verifies the owner covers every cost line, aggregating all
// short lines.
func checkResources(ctx context.Context, q store.DBTX, ownerID int64, stacks []model.ItemStack) error {
	missing := make(map[string]int)
	for _, s := range stacks {
		owned, err := store.Quantity(ctx, q, ownerID, s.ItemID)
		if err != nil {
			return err
		}
		if owned < s.Quantity {
			missing[s.ItemID] = s.Quantity - owned
		}
	}
	if len(missing) > 0 {
		return &InsufficientResourcesError{Missing: missing}
	}
	return nil
}

// checkItems verifies the owner covers every line, failing on the first
// short line.
func checkItems(ctx context.Context, q store.DBTX, ownerID int64, stacks []model.ItemStack) error {
	required := make(map[string]int)
	var order []string
	for _, s := range stacks {
		if _, ok := required[s.ItemID]; !ok {
			order = append(order, s.ItemID)
		}
		required[s.ItemID] += s.Quantity
	}

	for _, itemID := range order {
		owned, err := store.Quantity(ctx, q, ownerID, itemID)
		if err != nil {
			return err
		}
		if owned < required[itemID] {
			return &InsufficientItemsError{ItemID: itemID, Required: required[itemID], Owned: owned}
		}
	}
	return nil
}
