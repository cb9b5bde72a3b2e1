// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: connection string or SQLite file (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AdminKeySalt: Secret for event admin key HMAC (required)
  - TokenSecret: Secret for recipient token obfuscation (required)

# CLI Flags

	-p             Server port
	-d             Database URL
	-t             Database type
	--admin-salt   Admin key salt
	--token-secret Recipient token secret

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t
	ADMIN_KEY_SALT → --admin-salt
	TOKEN_SECRET   → --token-secret

CLI flags take precedence over environment variables.

# .env Files

LoadDotEnv reads a .env file before flags are parsed. Variables already in
the environment are not overridden, and a missing file is ignored:

	if err := cliparse.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}

# Validation

ParseFlags returns an error if required values are missing or the database
type is unknown. Changing TOKEN_SECRET makes previously drawn recipients
unreadable; reset and redraw affected events.
*/
package cliparse
