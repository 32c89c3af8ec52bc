package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is the full database schema.
//
// items.user_id deliberately has no foreign key: removing a user leaves
// their reports in place.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id                     INTEGER PRIMARY KEY,
    username               TEXT NOT NULL UNIQUE,
    email                  TEXT NOT NULL UNIQUE,
    password_hash          TEXT NOT NULL,
    is_verified            INTEGER NOT NULL DEFAULT 0,
    role                   TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    reset_password_token   TEXT,
    reset_password_expires DATETIME,
    created_at             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_users_reset_token
    ON users(reset_password_token) WHERE reset_password_token IS NOT NULL;

CREATE TABLE IF NOT EXISTS items (
    id                  INTEGER PRIMARY KEY,
    item_name           TEXT NOT NULL,
    category            TEXT NOT NULL,
    brand               TEXT NOT NULL DEFAULT '',
    primary_color       TEXT NOT NULL,
    secondary_color     TEXT NOT NULL DEFAULT '',
    date_lost_or_found  DATETIME NOT NULL,
    time_lost_or_found  TEXT NOT NULL DEFAULT '',
    image               TEXT NOT NULL DEFAULT '',
    additional_info     TEXT NOT NULL DEFAULT '',
    where_lost_or_found TEXT NOT NULL,
    location            TEXT NOT NULL,
    subcity             TEXT NOT NULL,
    zipcode             TEXT NOT NULL DEFAULT '',
    contact_first_name  TEXT NOT NULL,
    contact_last_name   TEXT NOT NULL,
    contact_phone       TEXT NOT NULL,
    contact_email       TEXT NOT NULL,
    status              TEXT NOT NULL DEFAULT 'lost' CHECK (status IN ('lost', 'found', 'returned')),
    date_reported       DATETIME NOT NULL,
    user_id             INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_status_reported ON items(status, date_reported);
CREATE INDEX IF NOT EXISTS idx_items_user ON items(user_id);

CREATE TABLE IF NOT EXISTS contacts (
    id         INTEGER PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name  TEXT NOT NULL,
    email      TEXT NOT NULL,
    contact    TEXT NOT NULL,
    message    TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sqlx.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
