package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS players (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'player' CHECK (role IN ('admin', 'moderator', 'player')),
    avatar        BLOB,
    avatar_mime   TEXT,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_players_username_active
    ON players(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS inventory (
    owner_id  INTEGER NOT NULL REFERENCES players(id),
    item_id   TEXT NOT NULL,
    quality   INTEGER NOT NULL DEFAULT 0 CHECK (quality BETWEEN 0 AND 4),
    quantity  INTEGER NOT NULL CHECK (quantity > 0),
    PRIMARY KEY (owner_id, item_id, quality)
);

CREATE TABLE IF NOT EXISTS buildings (
    id                 TEXT PRIMARY KEY,
    owner_id           INTEGER NOT NULL REFERENCES players(id),
    territory_id       TEXT NOT NULL,
    template_id        TEXT NOT NULL,
    status             TEXT NOT NULL DEFAULT 'constructing' CHECK (status IN ('constructing', 'active')),
    level              INTEGER NOT NULL DEFAULT 1,
    lat                REAL NOT NULL DEFAULT 0,
    lng                REAL NOT NULL DEFAULT 0,
    build_started_at   DATETIME NOT NULL,
    build_completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_buildings_territory
    ON buildings(territory_id, template_id);

CREATE TABLE IF NOT EXISTS trade_offers (
    id           TEXT PRIMARY KEY,
    owner_id     INTEGER NOT NULL REFERENCES players(id),
    offering     TEXT NOT NULL,
    requesting   TEXT NOT NULL,
    status       TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'completed', 'cancelled', 'expired')),
    message      TEXT,
    created_at   DATETIME NOT NULL,
    expires_at   DATETIME NOT NULL,
    completed_at DATETIME,
    completed_by INTEGER REFERENCES players(id)
);

CREATE INDEX IF NOT EXISTS idx_trade_offers_status
    ON trade_offers(status, expires_at);

CREATE TABLE IF NOT EXISTS trade_history (
    id              TEXT PRIMARY KEY,
    offer_id        TEXT,
    seller_id       INTEGER NOT NULL,
    seller_username TEXT NOT NULL,
    buyer_id        INTEGER NOT NULL,
    buyer_username  TEXT NOT NULL,
    offered         TEXT NOT NULL,
    requested       TEXT NOT NULL,
    completed_at    DATETIME NOT NULL,
    seller_rating   INTEGER CHECK (seller_rating BETWEEN 1 AND 5),
    seller_comment  TEXT,
    buyer_rating    INTEGER CHECK (buyer_rating BETWEEN 1 AND 5),
    buyer_comment   TEXT
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: Replace hard UNIQUE on username with a partial unique index
	// that only covers active (non-deleted) players so that soft-deleted
	// usernames can be reused.
	`DROP INDEX IF EXISTS sqlite_autoindex_players_1`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_players_username_active
	     ON players(username) WHERE deleted_at IS NULL`,
}

// Migrate runs the database schema migrations.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
