// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/secret-friend/middleware"
	"github.com/danielhkuo/secret-friend/models"
	"github.com/danielhkuo/secret-friend/store"
)

// TokenDecoder recovers a recipient id from its stored token
type TokenDecoder interface {
	Decode(token string) (int64, error)
}

type RevealHandler struct {
	store  *store.SQLStore
	tokens TokenDecoder
}

func NewRevealHandler(st *store.SQLStore, tokens TokenDecoder) *RevealHandler {
	return &RevealHandler{store: st, tokens: tokens}
}

// Reveal handles POST /events/{id}/reveal.
// Participants identify themselves with their lookup key; only names are returned.
func (h *RevealHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	var req models.RevealRequest
	if err := middleware.ParseAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, middleware.ValidationMessage(err))
		return
	}

	ev, err := h.store.GetEvent(r.Context(), eventID)
	if err != nil {
		storeError(w, r, err, "Event not found")
		return
	}

	participant, err := h.store.FindPerson(r.Context(), store.PersonFilter{
		EventID:   eventID,
		LookupKey: &req.LookupKey,
	})
	if err != nil {
		storeError(w, r, err, "Participant not found")
		return
	}

	if !participant.HasRecipient {
		middleware.ErrorResponse(w, http.StatusConflict, "Event has not been drawn yet")
		return
	}

	recipientID, err := h.tokens.Decode(participant.RecipientToken)
	if err != nil {
		slog.Error("failed to decode recipient token",
			"event_id", eventID,
			"person_id", participant.ID,
			"request_id", middleware.RequestID(r.Context()),
			"error", err,
		)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Recipient could not be read")
		return
	}

	recipient, err := h.store.FindPerson(r.Context(), store.PersonFilter{
		EventID: eventID,
		ID:      &recipientID,
	})
	if errors.Is(err, store.ErrNotFound) {
		slog.Error("recipient missing from roster",
			"event_id", eventID,
			"person_id", participant.ID,
			"recipient_id", recipientID,
		)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Recipient missing")
		return
	}
	if err != nil {
		storeError(w, r, err, "Participant not found")
		return
	}

	resp := models.RevealResponse{
		Participant: participant.Name,
		Recipient:   recipient.Name,
	}
	if ev.DrawnAt != nil {
		resp.Drawn = humanize.Time(*ev.DrawnAt)
	}

	slog.Info("recipient revealed", "event_id", eventID, "person_id", participant.ID)

	middleware.JSONResponse(w, http.StatusOK, resp)
}
