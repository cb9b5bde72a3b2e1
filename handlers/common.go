// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/secret-friend/auth"
	"github.com/danielhkuo/secret-friend/cliparse"
	"github.com/danielhkuo/secret-friend/middleware"
	"github.com/danielhkuo/secret-friend/store"
)

// pathID parses a positive integer path value
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// requireAdmin resolves the event id and checks the admin key.
// It writes the error response itself and reports false on failure.
func requireAdmin(w http.ResponseWriter, r *http.Request, cfg cliparse.Config) (int64, bool) {
	eventID, ok := pathID(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid event id")
		return 0, false
	}

	adminKey := r.Header.Get(auth.AdminKeyHeader)
	if err := auth.ValidateAdminKey(eventID, adminKey, cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return 0, false
	}

	return eventID, true
}

// storeError maps store errors to responses; anything unexpected is logged
func storeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, notFound)
	case errors.Is(err, store.ErrGroupNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Group not found")
	case errors.Is(err, store.ErrDuplicate):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrEventDrawn):
		middleware.ErrorResponse(w, http.StatusConflict, "Event has already been drawn")
	default:
		slog.Error("database error",
			"path", r.URL.Path,
			"request_id", middleware.RequestID(r.Context()),
			"error", err,
		)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}
