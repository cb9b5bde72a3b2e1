// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON, validated with validator struct tags:

  - CreateEventRequest: name, group_exclusion
  - UpdateEventRequest: name, group_exclusion (both optional)
  - SetStatusRequest: active
  - CreateGroupRequest: name
  - CreatePersonRequest: name, lookup_key, group_id
  - RevealRequest: lookup_key

# Response Types

  - CreateEventResponse: event_id, admin_key
  - CreateGroupResponse: group_id
  - CreatePersonResponse: person_id
  - StatusResponse: status, run_id, drawn_at
  - RevealResponse: participant, recipient, drawn
  - EventDetails: event, groups, people
  - ErrorResponse: error, message

# Domain Types

  - Event: name, group exclusion flag and draw status
  - Group: named partition inside an event
  - Person: participant; lookup key and recipient token never leave the server

# Constants

Status values:

	StatusOpen  = "open"
	StatusDrawn = "drawn"
*/
package models
