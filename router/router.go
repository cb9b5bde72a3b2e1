// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/secret-friend/cliparse"
	"github.com/danielhkuo/secret-friend/codec"
	"github.com/danielhkuo/secret-friend/draw"
	"github.com/danielhkuo/secret-friend/handlers"
	"github.com/danielhkuo/secret-friend/middleware"
	"github.com/danielhkuo/secret-friend/store"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) (*http.ServeMux, error) {
	tokens, err := codec.New(cfg.TokenSecret)
	if err != nil {
		return nil, err
	}

	st := store.New(db)
	runner := draw.NewRunner(st, tokens, nil)

	mux := http.NewServeMux()

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(st, runner, cfg)
	groupHandler := handlers.NewGroupHandler(st, cfg)
	personHandler := handlers.NewPersonHandler(st, cfg)
	revealHandler := handlers.NewRevealHandler(st, tokens)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Event management (admin operations)
	mux.HandleFunc("POST /events", middleware.WithLogging(eventHandler.CreateEvent))
	mux.HandleFunc("GET /events/{id}", middleware.WithLogging(eventHandler.GetEvent))
	mux.HandleFunc("PATCH /events/{id}", middleware.WithLogging(eventHandler.UpdateEvent))
	mux.HandleFunc("DELETE /events/{id}", middleware.WithLogging(eventHandler.DeleteEvent))
	mux.HandleFunc("PATCH /events/{id}/status", middleware.WithLogging(eventHandler.SetStatus))

	// Groups and people (admin operations)
	mux.HandleFunc("POST /events/{id}/groups", middleware.WithLogging(groupHandler.CreateGroup))
	mux.HandleFunc("GET /events/{id}/groups", middleware.WithLogging(groupHandler.ListGroups))
	mux.HandleFunc("DELETE /events/{id}/groups/{groupID}", middleware.WithLogging(groupHandler.DeleteGroup))
	mux.HandleFunc("POST /events/{id}/people", middleware.WithLogging(personHandler.CreatePerson))
	mux.HandleFunc("GET /events/{id}/people", middleware.WithLogging(personHandler.ListPeople))
	mux.HandleFunc("DELETE /events/{id}/people/{personID}", middleware.WithLogging(personHandler.DeletePerson))

	// Reveal (public, uses the participant's lookup key)
	mux.HandleFunc("POST /events/{id}/reveal", middleware.WithLogging(revealHandler.Reveal))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("secret-friend API v1"))
	})

	return mux, nil
}
