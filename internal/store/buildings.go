package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jusmik/outpost/internal/model"
)

// InsertBuilding inserts a new building row.
func InsertBuilding(ctx context.Context, q DBTX, b *model.Building) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO buildings (id, owner_id, territory_id, template_id, status, level, lat, lng, build_started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.OwnerID, b.TerritoryID, b.TemplateID, b.Status, b.Level, b.Lat, b.Lng, b.BuildStartedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting building: %w", err)
	}
	return nil
}

// GetBuilding returns a building by ID.
func GetBuilding(ctx context.Context, q DBTX, id string) (*model.Building, error) {
	b := &model.Building{}
	err := q.QueryRowContext(ctx,
		`SELECT id, owner_id, territory_id, template_id, status, level, lat, lng, build_started_at, build_completed_at
		 FROM buildings WHERE id = ?`, id,
	).Scan(&b.ID, &b.OwnerID, &b.TerritoryID, &b.TemplateID, &b.Status, &b.Level, &b.Lat, &b.Lng,
		&b.BuildStartedAt, &b.BuildCompletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting building: %w", err)
	}
	return b, nil
}

// ListBuildings returns buildings filtered by territory and/or owner.
// Zero values skip the corresponding filter.
func ListBuildings(ctx context.Context, q DBTX, territoryID string, ownerID int64) ([]model.Building, error) {
	query := `SELECT id, owner_id, territory_id, template_id, status, level, lat, lng, build_started_at, build_completed_at
	          FROM buildings WHERE 1=1`
	var args []any

	if territoryID != "" {
		query += ` AND territory_id = ?`
		args = append(args, territoryID)
	}
	if ownerID > 0 {
		query += ` AND owner_id = ?`
		args = append(args, ownerID)
	}

	query += ` ORDER BY build_started_at`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing buildings: %w", err)
	}
	defer rows.Close()

	var buildings []model.Building
	for rows.Next() {
		var b model.Building
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.TerritoryID, &b.TemplateID, &b.Status, &b.Level,
			&b.Lat, &b.Lng, &b.BuildStartedAt, &b.BuildCompletedAt); err != nil {
			return nil, fmt.Errorf("scanning building: %w", err)
		}
		buildings = append(buildings, b)
	}
	return buildings, rows.Err()
}

// CountTemplateInTerritory counts buildings of a template in a territory,
// used for per-territory cap checks.
func CountTemplateInTerritory(ctx context.Context, q DBTX, territoryID, templateID string) (int, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM buildings WHERE territory_id = ? AND template_id = ?`,
		territoryID, templateID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting buildings: %w", err)
	}
	return count, nil
}

// MarkBuildingActive persists the active status. The write only fires for
// constructing rows, so repeated completion calls are no-ops.
func MarkBuildingActive(ctx context.Context, q DBTX, id string, completedAt time.Time) error {
	_, err := q.ExecContext(ctx,
		`UPDATE buildings SET status = ?, build_completed_at = ?
		 WHERE id = ? AND status = ?`,
		model.BuildingStatusActive, completedAt, id, model.BuildingStatusConstructing,
	)
	if err != nil {
		return fmt.Errorf("marking building active: %w", err)
	}
	return nil
}

// UpgradeBuildingRow swaps the building to the upgrade template and resets
// the construction timer.
func UpgradeBuildingRow(ctx context.Context, q DBTX, id, newTemplateID string, startedAt time.Time) error {
	_, err := q.ExecContext(ctx,
		`UPDATE buildings
		 SET template_id = ?, level = level + 1, status = ?,
		     build_started_at = ?, build_completed_at = NULL
		 WHERE id = ?`,
		newTemplateID, model.BuildingStatusConstructing, startedAt, id,
	)
	if err != nil {
		return fmt.Errorf("upgrading building: %w", err)
	}
	return nil
}

// DeleteBuilding removes a building row.
func DeleteBuilding(ctx context.Context, q DBTX, id string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM buildings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting building: %w", err)
	}
	return nil
}
