package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS inventory_records (
    id            TEXT PRIMARY KEY,
    scan_code     TEXT,
    location      TEXT NOT NULL,
    purchase_date TEXT NOT NULL,
    sale_date     TEXT,
    model_name    TEXT NOT NULL,
    name          TEXT NOT NULL,
    size          TEXT,
    vendor        TEXT NOT NULL,
    price_cents   INTEGER NOT NULL CHECK (price_cents >= 0),
    notes         TEXT,
    photo         BLOB,
    photo_mime    TEXT,
    created_at    DATETIME NOT NULL,
    updated_at    DATETIME NOT NULL,
    CHECK (sale_date IS NULL OR sale_date >= purchase_date)
);

CREATE INDEX IF NOT EXISTS idx_records_scan_code
    ON inventory_records(scan_code) WHERE scan_code IS NOT NULL;

CREATE INDEX IF NOT EXISTS idx_records_sale_date
    ON inventory_records(sale_date);

CREATE INDEX IF NOT EXISTS idx_records_model_name
    ON inventory_records(model_name, name);

CREATE TABLE IF NOT EXISTS scan_codes (
    scan_code  TEXT PRIMARY KEY,
    model_name TEXT NOT NULL,
    name       TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'viewer' CHECK (role IN ('admin', 'staff', 'viewer')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
