// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists events, groups and people with database/sql.

SQLStore implements draw.Store. ApplyDraw and ClearDraw run in a single
transaction each; the drawn transition is guarded on status = 'open'.

Errors: ErrNotFound, ErrGroupNotFound, ErrDuplicate, ErrEventDrawn and
ErrRosterChanged. Wrap-checked with errors.Is.
*/
package store
