// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Open connects to the database and verifies the connection.
// SQLite gets a single connection so in-memory databases survive and
// writers never contend.
func Open(dialect, url string) (*sql.DB, error) {
	switch dialect {
	case DialectPostgres, DialectSQLite:
	default:
		return nil, fmt.Errorf("unsupported database type %q", dialect)
	}

	conn, err := sql.Open(dialect, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == DialectSQLite {
		conn.SetMaxOpenConns(1)
		if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect string) error {
	schema := postgresSchema
	if dialect == DialectSQLite {
		schema = sqliteSchema
	}

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const postgresSchema = `
-- Events
CREATE TABLE IF NOT EXISTS event (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    group_exclusion BOOLEAN NOT NULL DEFAULT FALSE,
    status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'drawn')),
    drawn_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_event_status ON event(status);

-- Groups
CREATE TABLE IF NOT EXISTS event_group (
    id BIGSERIAL PRIMARY KEY,
    event_id BIGINT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    UNIQUE (event_id, name)
);

CREATE INDEX IF NOT EXISTS idx_event_group_event_id ON event_group(event_id);

-- People
CREATE TABLE IF NOT EXISTS person (
    id BIGSERIAL PRIMARY KEY,
    event_id BIGINT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    group_id BIGINT NOT NULL REFERENCES event_group(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    lookup_key TEXT NOT NULL,
    recipient_token TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    UNIQUE (event_id, lookup_key)
);

CREATE INDEX IF NOT EXISTS idx_person_event_id ON person(event_id);
CREATE INDEX IF NOT EXISTS idx_person_group_id ON person(group_id);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS event (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    group_exclusion BOOLEAN NOT NULL DEFAULT FALSE,
    status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'drawn')),
    drawn_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_event_status ON event(status);

CREATE TABLE IF NOT EXISTS event_group (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id INTEGER NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    UNIQUE (event_id, name)
);

CREATE INDEX IF NOT EXISTS idx_event_group_event_id ON event_group(event_id);

CREATE TABLE IF NOT EXISTS person (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id INTEGER NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    group_id INTEGER NOT NULL REFERENCES event_group(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    lookup_key TEXT NOT NULL,
    recipient_token TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (event_id, lookup_key)
);

CREATE INDEX IF NOT EXISTS idx_person_event_id ON person(event_id);
CREATE INDEX IF NOT EXISTS idx_person_group_id ON person(group_id);
`
