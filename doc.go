// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Secret Friend API server.

Secret Friend runs gift exchanges: an organizer creates an event, splits
participants into groups (households, teams), and draws. Every participant
gets exactly one recipient, nobody draws themselves, and with group
exclusion on nobody draws someone from their own group. Participants later
reveal their recipient with a private lookup key.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=secret-friend.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

A .env file in the working directory is loaded first.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC
  - TOKEN_SECRET (--token-secret): Secret for recipient tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - draw: Assignment engine and the draw runner
  - codec: Recipient token obfuscation
  - store: SQL persistence for events, groups and people
  - handlers: HTTP request handlers (events, groups, people, reveal)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, request ids, JSON and validation helpers
  - models: Request/response types
  - auth: Admin key generation and validation
  - db: Connection setup and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
