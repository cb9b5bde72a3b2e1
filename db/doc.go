// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Drivers

Two dialects are supported:

  - postgres: github.com/lib/pq
  - sqlite: modernc.org/sqlite (pure Go, also used by the tests)

	conn, err := db.Open(db.DialectSQLite, "secret-friend.db")

SQLite connections are limited to one open connection and have foreign
keys enabled.

# Schema Creation

CreateSchema initializes all required tables for the given dialect:

	if err := db.CreateSchema(conn, db.DialectPostgres); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - event: name, group exclusion flag, draw status
  - event_group: named partition of an event's people
  - person: participant with lookup key and obfuscated recipient token

# Relationships

	event 1──* event_group
	event 1──* person
	event_group 1──* person

All foreign keys use ON DELETE CASCADE.
*/
package db
