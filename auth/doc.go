// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin key generation and validation.

# Admin Keys

Admin keys use HMAC-SHA256 over the event ID to create deterministic,
verifiable keys:

	adminKey := auth.GenerateAdminKey(eventID, salt)
	err := auth.ValidateAdminKey(eventID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same event ID and salt always produce the same key. This allows validation
without storing the key in the database.

Clients send the key in the X-Admin-Key header (AdminKeyHeader) on every
event management request. Anyone holding the key can draw, reset and edit
the event, so it is returned once, when the event is created.

Participants never need an admin key: they reveal their recipient with the
lookup key the organizer gave them.
*/
package auth
