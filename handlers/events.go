// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/secret-friend/auth"
	"github.com/danielhkuo/secret-friend/cliparse"
	"github.com/danielhkuo/secret-friend/draw"
	"github.com/danielhkuo/secret-friend/middleware"
	"github.com/danielhkuo/secret-friend/models"
	"github.com/danielhkuo/secret-friend/store"
)

type EventHandler struct {
	store  *store.SQLStore
	runner *draw.Runner
	cfg    cliparse.Config
}

func NewEventHandler(st *store.SQLStore, runner *draw.Runner, cfg cliparse.Config) *EventHandler {
	return &EventHandler{store: st, runner: runner, cfg: cfg}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := middleware.ParseAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, middleware.ValidationMessage(err))
		return
	}

	eventID, err := h.store.CreateEvent(r.Context(), req.Name, req.GroupExclusion)
	if err != nil {
		slog.Error("failed to insert event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	slog.Info("event created", "event_id", eventID, "group_exclusion", req.GroupExclusion)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateEventResponse{
		EventID:  eventID,
		AdminKey: auth.GenerateAdminKey(eventID, h.cfg.AdminKeySalt),
	})
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requireAdmin(w, r, h.cfg)
	if !ok {
		return
	}

	ev, err := h.store.GetEvent(r.Context(), eventID)
	if err != nil {
		storeError(w, r, err, "Event not found")
		return
	}

	groups, err := h.store.ListGroups(r.Context(), eventID)
	if err != nil {
		storeError(w, r, err, "Event not found")
		return
	}

	people, err := h.store.ListPeople(r.Context(), store.PersonFilter{EventID: eventID})
	if err != nil {
		storeError(w, r, err, "Event not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.EventDetails{
		Event:  ev,
		Groups: groups,
		People: people,
	})
}

// UpdateEvent handles PATCH /events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requireAdmin(w, r, h.cfg)
	if !ok {
		return
	}

	var req models.UpdateEventRequest
	if err := middleware.ParseAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, middleware.ValidationMessage(err))
		return
	}
	if req.Name == nil && req.GroupExclusion == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	upd := store.EventUpdate{Name: req.Name, GroupExclusion: req.GroupExclusion}
	if err := h.store.UpdateEvent(r.Context(), eventID, upd); err != nil {
		storeError(w, r, err, "Event not found")
		return
	}

	ev, err := h.store.GetEvent(r.Context(), eventID)
	if err != nil {
		storeError(w, r, err, "Event not found")
		return
	}

	slog.Info("event updated", "event_id", eventID)

	middleware.JSONResponse(w, http.StatusOK, ev)
}

// DeleteEvent handles DELETE /events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requireAdmin(w, r, h.cfg)
	if !ok {
		return
	}

	if err := h.store.DeleteEvent(r.Context(), eventID); err != nil {
		storeError(w, r, err, "Event not found")
		return
	}

	slog.Info("event deleted", "event_id", eventID)

	w.WriteHeader(http.StatusNoContent)
}

// SetStatus handles PATCH /events/{id}/status.
// active=true draws the event, active=false clears the draw.
func (h *EventHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requireAdmin(w, r, h.cfg)
	if !ok {
		return
	}

	var req models.SetStatusRequest
	if err := middleware.ParseAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, middleware.ValidationMessage(err))
		return
	}

	if !*req.Active {
		if err := h.runner.Reset(r.Context(), eventID); err != nil {
			h.drawError(w, r, eventID, err)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{Status: models.StatusOpen})
		return
	}

	outcome, err := h.runner.Run(r.Context(), eventID)
	if err != nil {
		h.drawError(w, r, eventID, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{
		Status:  models.StatusDrawn,
		RunID:   outcome.RunID,
		DrawnAt: &outcome.DrawnAt,
	})
}

func (h *EventHandler) drawError(w http.ResponseWriter, r *http.Request, eventID int64, err error) {
	switch {
	case errors.Is(err, draw.ErrDrawFailed):
		middleware.ErrorResponse(w, http.StatusConflict, draw.ErrDrawFailed.Error())
	case errors.Is(err, draw.ErrDrawInProgress):
		middleware.ErrorResponse(w, http.StatusConflict, "A draw is already running for this event")
	case errors.Is(err, store.ErrRosterChanged):
		middleware.ErrorResponse(w, http.StatusConflict, "Participants changed during the draw, try again")
	case errors.Is(err, draw.ErrInvalidRoster):
		slog.Error("invalid roster", "event_id", eventID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Invalid participant list")
	default:
		storeError(w, r, err, "Event not found")
	}
}
