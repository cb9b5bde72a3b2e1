// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Secret Friend API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux, err := router.NewRouter(db, cfg)

It fails only when the token secret is missing.

# Endpoints

Health:

	GET /health

Event management (admin, requires X-Admin-Key):

	POST   /events             - Create event (returns admin_key)
	GET    /events/{id}        - Event with groups and people
	PATCH  /events/{id}        - Rename or toggle group exclusion
	DELETE /events/{id}        - Delete event
	PATCH  /events/{id}/status - {"active": true} draws, false resets

Groups and people (admin, open events only for changes):

	POST   /events/{id}/groups
	GET    /events/{id}/groups
	DELETE /events/{id}/groups/{groupID}
	POST   /events/{id}/people
	GET    /events/{id}/people?group_id=
	DELETE /events/{id}/people/{personID}

Reveal (public, uses the participant lookup key):

	POST /events/{id}/reveal

# Handler Initialization

The router builds the shared pieces once and injects them:

	tokens, _ := codec.New(cfg.TokenSecret)
	st := store.New(db)
	runner := draw.NewRunner(st, tokens, nil)

A single Runner serves every request, so concurrent draws for the same
event are rejected in-process.
*/
package router
