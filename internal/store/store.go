package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jusmik/outpost/internal/model"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx. Lifecycle operations in
// the game layer run several store calls inside one transaction, so every
// store function takes the connection through this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// marshalStacks encodes an item stack list for a JSON text column.
func marshalStacks(stacks []model.ItemStack) (string, error) {
	data, err := json.Marshal(stacks)
	if err != nil {
		return "", fmt.Errorf("encoding item stacks: %w", err)
	}
	return string(data), nil
}

// unmarshalStacks decodes an item stack list from a JSON text column.
func unmarshalStacks(data string) ([]model.ItemStack, error) {
	var stacks []model.ItemStack
	if err := json.Unmarshal([]byte(data), &stacks); err != nil {
		return nil, fmt.Errorf("decoding item stacks: %w", err)
	}
	return stacks, nil
}
