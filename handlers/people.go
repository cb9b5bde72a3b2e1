// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/secret-friend/cliparse"
	"github.com/danielhkuo/secret-friend/middleware"
	"github.com/danielhkuo/secret-friend/models"
	"github.com/danielhkuo/secret-friend/store"
)

type PersonHandler struct {
	store *store.SQLStore
	cfg   cliparse.Config
}

func NewPersonHandler(st *store.SQLStore, cfg cliparse.Config) *PersonHandler {
	return &PersonHandler{store: st, cfg: cfg}
}

// CreatePerson handles POST /events/{id}/people
func (h *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requireAdmin(w, r, h.cfg)
	if !ok {
		return
	}

	var req models.CreatePersonRequest
	if err := middleware.ParseAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, middleware.ValidationMessage(err))
		return
	}

	personID, err := h.store.CreatePerson(r.Context(), eventID, store.PersonInput{
		GroupID:   req.GroupID,
		Name:      req.Name,
		LookupKey: req.LookupKey,
	})
	if err != nil {
		storeError(w, r, err, "Event not found")
		return
	}

	slog.Info("person added", "event_id", eventID, "person_id", personID, "group_id", req.GroupID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePersonResponse{PersonID: personID})
}

// ListPeople handles GET /events/{id}/people?group_id=
func (h *PersonHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requireAdmin(w, r, h.cfg)
	if !ok {
		return
	}

	filter := store.PersonFilter{EventID: eventID}
	if raw := r.URL.Query().Get("group_id"); raw != "" {
		groupID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || groupID <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid group_id")
			return
		}
		filter.GroupID = &groupID
	}

	if _, err := h.store.GetEvent(r.Context(), eventID); err != nil {
		storeError(w, r, err, "Event not found")
		return
	}

	people, err := h.store.ListPeople(r.Context(), filter)
	if err != nil {
		storeError(w, r, err, "Event not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, people)
}

// DeletePerson handles DELETE /events/{id}/people/{personID}
func (h *PersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requireAdmin(w, r, h.cfg)
	if !ok {
		return
	}

	personID, ok := pathID(r, "personID")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid person id")
		return
	}

	if err := h.store.DeletePerson(r.Context(), eventID, personID); err != nil {
		storeError(w, r, err, "Person not found")
		return
	}

	slog.Info("person removed", "event_id", eventID, "person_id", personID)

	w.WriteHeader(http.StatusNoContent)
}
