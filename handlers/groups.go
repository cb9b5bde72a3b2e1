// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/secret-friend/cliparse"
	"github.com/danielhkuo/secret-friend/middleware"
	"github.com/danielhkuo/secret-friend/models"
	"github.com/danielhkuo/secret-friend/store"
)

type GroupHandler struct {
	store *store.SQLStore
	cfg   cliparse.Config
}

func NewGroupHandler(st *store.SQLStore, cfg cliparse.Config) *GroupHandler {
	return &GroupHandler{store: st, cfg: cfg}
}

// CreateGroup handles POST /events/{id}/groups
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requireAdmin(w, r, h.cfg)
	if !ok {
		return
	}

	var req models.CreateGroupRequest
	if err := middleware.ParseAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, middleware.ValidationMessage(err))
		return
	}

	groupID, err := h.store.CreateGroup(r.Context(), eventID, req.Name)
	if err != nil {
		storeError(w, r, err, "Event not found")
		return
	}

	slog.Info("group added", "event_id", eventID, "group_id", groupID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateGroupResponse{GroupID: groupID})
}

// ListGroups handles GET /events/{id}/groups
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requireAdmin(w, r, h.cfg)
	if !ok {
		return
	}

	groups, err := h.store.ListGroups(r.Context(), eventID)
	if err != nil {
		storeError(w, r, err, "Event not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, groups)
}

// DeleteGroup handles DELETE /events/{id}/groups/{groupID}
func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requireAdmin(w, r, h.cfg)
	if !ok {
		return
	}

	groupID, ok := pathID(r, "groupID")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid group id")
		return
	}

	if err := h.store.DeleteGroup(r.Context(), eventID, groupID); err != nil {
		storeError(w, r, err, "Event not found")
		return
	}

	slog.Info("group deleted", "event_id", eventID, "group_id", groupID)

	w.WriteHeader(http.StatusNoContent)
}
