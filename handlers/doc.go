// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Secret Friend API.

# Handler Types

Each handler is a struct with its store and config dependencies:

  - EventHandler: Event lifecycle (create, update, delete, draw, reset)
  - GroupHandler: Groups inside an event
  - PersonHandler: Participants and their lookup keys
  - RevealHandler: Participant-facing recipient reveal

Handlers are created via constructor functions:

	st := store.New(db)
	eventHandler := handlers.NewEventHandler(st, runner, cfg)

# Event Lifecycle

Events have two states: open → drawn (and back, on reset)

	POST  /events             → CreateEvent (returns admin_key)
	POST  /events/{id}/groups → CreateGroup (open only)
	POST  /events/{id}/people → CreatePerson (open only)
	PATCH /events/{id}/status → SetStatus {"active": true} draws

Admin operations require the X-Admin-Key header. Membership changes on a
drawn event return 409 until the draw is reset with {"active": false}.

# Draw Errors

SetStatus maps runner errors to responses:

  - draw.ErrDrawFailed: 409 "draw could not be completed"
  - draw.ErrDrawInProgress: 409, another request is drawing this event
  - store.ErrEventDrawn: 409, already drawn
  - store.ErrNotFound: 404

# Reveal

	POST /events/{id}/reveal {"lookup_key": "..."}

Returns the participant's and the recipient's display names only. A token
that fails to decode and a token pointing at a missing participant are both
server errors and are logged separately.
*/
package handlers
