package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jusmik/outpost/internal/model"
)

// CreatePlayer creates a new player account.
func CreatePlayer(ctx context.Context, q DBTX, username, passwordHash, role string) (*model.Player, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO players (username, password_hash, role) VALUES (?, ?, ?)`,
		username, passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating player: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting player id: %w", err)
	}

	return GetPlayer(ctx, q, id)
}

// GetPlayer returns a player by ID.
func GetPlayer(ctx context.Context, q DBTX, id int64) (*model.Player, error) {
	p := &model.Player{}
	var avatarMime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, avatar_mime, created_at, deleted_at
		 FROM players WHERE id = ?`, id,
	).Scan(&p.ID, &p.Username, &p.PasswordHash, &p.Role, &avatarMime, &p.CreatedAt, &p.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting player: %w", err)
	}
	p.AvatarMime = avatarMime.String
	return p, nil
}

// GetPlayerByUsername returns a player by username (including soft-deleted
// for auth checks).
func GetPlayerByUsername(ctx context.Context, q DBTX, username string) (*model.Player, error) {
	p := &model.Player{}
	var avatarMime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, avatar_mime, created_at, deleted_at
		 FROM players WHERE username = ?`, username,
	).Scan(&p.ID, &p.Username, &p.PasswordHash, &p.Role, &avatarMime, &p.CreatedAt, &p.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting player by username: %w", err)
	}
	p.AvatarMime = avatarMime.String
	return p, nil
}

// ListPlayers returns all non-deleted players.
func ListPlayers(ctx context.Context, q DBTX) ([]model.Player, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, username, password_hash, role, avatar_mime, created_at, deleted_at
		 FROM players WHERE deleted_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing players: %w", err)
	}
	defer rows.Close()

	var players []model.Player
	for rows.Next() {
		var p model.Player
		var avatarMime sql.NullString
		if err := rows.Scan(&p.ID, &p.Username, &p.PasswordHash, &p.Role, &avatarMime, &p.CreatedAt, &p.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		p.AvatarMime = avatarMime.String
		players = append(players, p)
	}
	return players, rows.Err()
}

// UpdatePlayerRole updates a player's role.
func UpdatePlayerRole(ctx context.Context, q DBTX, id int64, role string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE players SET role = ? WHERE id = ? AND deleted_at IS NULL`,
		role, id,
	)
	if err != nil {
		return fmt.Errorf("updating player role: %w", err)
	}
	return nil
}

// UpdatePlayerPassword updates a player's password hash.
func UpdatePlayerPassword(ctx context.Context, q DBTX, id int64, passwordHash string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE players SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating player password: %w", err)
	}
	return nil
}

// DeletePlayer soft-deletes a player.
func DeletePlayer(ctx context.Context, q DBTX, id int64) error {
	_, err := q.ExecContext(ctx,
		`UPDATE players SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting player: %w", err)
	}
	return nil
}

// SetPlayerAvatar sets a player's avatar image data.
func SetPlayerAvatar(ctx context.Context, q DBTX, id int64, image []byte, mime string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE players SET avatar = ?, avatar_mime = ? WHERE id = ? AND deleted_at IS NULL`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting player avatar: %w", err)
	}
	return nil
}

// GetPlayerAvatar returns a player's avatar image data and MIME type.
func GetPlayerAvatar(ctx context.Context, q DBTX, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT avatar, avatar_mime FROM players WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting player avatar: %w", err)
	}
	return image, mime.String, nil
}
