package game

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jusmik/outpost/internal/feed"
	"github.com/jusmik/outpost/internal/model"
	"github.com/jusmik/outpost/internal/store"
)

// StartConstruction debits the template's resource cost and creates a
// building in the constructing state. The cap check, the multi-line debit
// and the insert are one transaction.
func (s *Service) StartConstruction(ctx context.Context, ownerID int64, territoryID, templateID string, lat, lng float64) (*model.Building, error) {
	if territoryID == "" {
		return nil, &InvalidDataError{Reason: "territory id is required"}
	}
	tpl, ok := s.Catalog.Building(templateID)
	if !ok {
		return nil, ErrTemplateNotFound
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	count, err := store.CountTemplateInTerritory(ctx, tx, territoryID, templateID)
	if err != nil {
		return nil, err
	}
	if count >= tpl.MaxPerTerritory {
		return nil, &MaxBuildingsError{TemplateID: templateID, Max: tpl.MaxPerTerritory}
	}

	cost := costStacks(tpl.Resources)
	if err := checkResources(ctx, tx, ownerID, cost); err != nil {
		return nil, err
	}
	if err := store.DebitStacks(ctx, tx, ownerID, cost); err != nil {
		return nil, err
	}

	now := s.now()
	b := &model.Building{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		TerritoryID:    territoryID,
		TemplateID:     templateID,
		Status:         model.BuildingStatusConstructing,
		Level:          1,
		Lat:            lat,
		Lng:            lng,
		BuildStartedAt: now,
	}
	if err := store.InsertBuilding(ctx, tx, b); err != nil {
		return nil, err
	}

	if err := commit(tx); err != nil {
		return nil, err
	}

	slog.Info("construction started", "building", b.ID, "template", templateID, "territory", territoryID, "owner", ownerID)
	s.publish(feed.EventBuildingStarted, b)
	return s.decorate(b), nil
}

// Building returns a building with its derived status and remaining time.
func (s *Service) Building(ctx context.Context, id string) (*model.Building, error) {
	b, err := store.GetBuilding(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBuildingNotFound
	}
	return s.decorate(b), nil
}

// Buildings lists buildings by territory and/or owner with derived fields.
func (s *Service) Buildings(ctx context.Context, territoryID string, ownerID int64) ([]model.Building, error) {
	buildings, err := store.ListBuildings(ctx, s.DB, territoryID, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range buildings {
		s.decorate(&buildings[i])
	}
	return buildings, nil
}

// CompleteConstruction persists the active status once the build time has
// elapsed. Idempotent: completing an already-active building is a no-op.
func (s *Service) CompleteConstruction(ctx context.Context, callerID int64, buildingID string) (*model.Building, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	b, err := store.GetBuilding(ctx, tx, buildingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBuildingNotFound
	}
	if b.OwnerID != callerID {
		return nil, ErrNotOwner
	}
	if b.Status == model.BuildingStatusActive {
		return s.decorate(b), nil
	}

	tpl, ok := s.Catalog.Building(b.TemplateID)
	if !ok {
		return nil, ErrTemplateNotFound
	}

	now := s.now()
	if b.EffectiveStatus(tpl.BuildTime(), now) != model.BuildingStatusActive {
		return nil, ErrBuildingNotComplete
	}

	if err := store.MarkBuildingActive(ctx, tx, b.ID, now); err != nil {
		return nil, err
	}
	if err := commit(tx); err != nil {
		return nil, err
	}

	b.Status = model.BuildingStatusActive
	b.BuildCompletedAt = &now

	slog.Info("construction completed", "building", b.ID, "template", b.TemplateID, "owner", b.OwnerID)
	s.publish(feed.EventBuildingCompleted, b)
	return s.decorate(b), nil
}

// UpgradeBuilding swaps the building to its template's upgrade target,
// debits the upgrade cost and restarts the construction timer.
func (s *Service) UpgradeBuilding(ctx context.Context, callerID int64, buildingID string) (*model.Building, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	b, err := store.GetBuilding(ctx, tx, buildingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBuildingNotFound
	}
	if b.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	tpl, ok := s.Catalog.Building(b.TemplateID)
	if !ok {
		return nil, ErrTemplateNotFound
	}
	if b.EffectiveStatus(tpl.BuildTime(), s.now()) != model.BuildingStatusActive {
		return nil, &CannotUpgradeError{Reason: "building is still under construction"}
	}
	if tpl.UpgradeTo == "" {
		return nil, &CannotUpgradeError{Reason: "no upgrade available for " + tpl.ID}
	}
	upgrade, ok := s.Catalog.Building(tpl.UpgradeTo)
	if !ok {
		return nil, ErrTemplateNotFound
	}

	cost := costStacks(upgrade.Resources)
	if err := checkResources(ctx, tx, callerID, cost); err != nil {
		return nil, err
	}
	if err := store.DebitStacks(ctx, tx, callerID, cost); err != nil {
		return nil, err
	}

	now := s.now()
	if err := store.UpgradeBuildingRow(ctx, tx, b.ID, upgrade.ID, now); err != nil {
		return nil, err
	}
	if err := commit(tx); err != nil {
		return nil, err
	}

	b.TemplateID = upgrade.ID
	b.Level++
	b.Status = model.BuildingStatusConstructing
	b.BuildStartedAt = now
	b.BuildCompletedAt = nil

	slog.Info("building upgraded", "building", b.ID, "template", upgrade.ID, "owner", b.OwnerID)
	s.publish(feed.EventBuildingUpgraded, b)
	return s.decorate(b), nil
}

// DemolishBuilding deletes a building. No resource refund.
func (s *Service) DemolishBuilding(ctx context.Context, callerID int64, buildingID string) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	b, err := store.GetBuilding(ctx, tx, buildingID)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrBuildingNotFound
	}
	if b.OwnerID != callerID {
		return ErrNotOwner
	}

	if err := store.DeleteBuilding(ctx, tx, b.ID); err != nil {
		return err
	}
	if err := commit(tx); err != nil {
		return err
	}

	slog.Info("building demolished", "building", b.ID, "owner", b.OwnerID)
	return nil
}

// decorate fills a building's derived status and remaining build time from
// the wall clock.
func (s *Service) decorate(b *model.Building) *model.Building {
	tpl, ok := s.Catalog.Building(b.TemplateID)
	if !ok {
		return b
	}
	now := s.now()
	b.RemainingSeconds = int(b.Remaining(tpl.BuildTime(), now).Seconds())
	b.Status = b.EffectiveStatus(tpl.BuildTime(), now)
	return b
}
