// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package draw

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

var ErrDrawInProgress = errors.New("a draw is already running for this event")

// EventFlags are the per-event settings that shape a draw
type EventFlags struct {
	GroupExclusion bool
}

// RecipientToken is the encoded recipient to store on a participant
type RecipientToken struct {
	ParticipantID int64
	Token         string
}

// Store is the persistence the runner needs
type Store interface {
	FetchEventFlags(ctx context.Context, eventID int64) (EventFlags, error)
	FetchRoster(ctx context.Context, eventID int64) ([]Participant, error)
	// ApplyDraw must write every token or none of them
	ApplyDraw(ctx context.Context, eventID int64, drawnAt time.Time, tokens []RecipientToken) error
	ClearDraw(ctx context.Context, eventID int64) error
}

// Encoder turns a recipient id into its stored token
type Encoder interface {
	Encode(recipientID int64) (string, error)
}

// Outcome describes an applied draw
type Outcome struct {
	RunID    string
	EventID  int64
	Attempt  int
	Pairings int
	DrawnAt  time.Time
}

// Runner loads a roster, runs the engine and persists the result
type Runner struct {
	store   Store
	encoder Encoder
	locks   *KeyedLock

	engineMu sync.Mutex
	engine   *Engine
}

func NewRunner(store Store, encoder Encoder, engine *Engine) *Runner {
	if engine == nil {
		engine = NewEngine(nil)
	}
	return &Runner{
		store:   store,
		encoder: encoder,
		locks:   NewKeyedLock(),
		engine:  engine,
	}
}

// RunDraw runs a draw and reports whether it was applied
func (r *Runner) RunDraw(ctx context.Context, eventID int64) bool {
	_, err := r.Run(ctx, eventID)
	return err == nil
}

// Run draws and applies pairings for one event. Nothing is written unless
// a full matching was found and every token encoded.
func (r *Runner) Run(ctx context.Context, eventID int64) (*Outcome, error) {
	if !r.locks.TryAcquire(eventID) {
		return nil, ErrDrawInProgress
	}
	defer r.locks.Release(eventID)

	flags, err := r.store.FetchEventFlags(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("fetch event flags: %w", err)
	}

	roster, err := r.store.FetchRoster(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}

	r.engineMu.Lock()
	pairings, attempt, err := r.engine.DrawWithStats(roster, flags.GroupExclusion)
	r.engineMu.Unlock()
	if err != nil {
		slog.Warn("draw failed",
			"event_id", eventID,
			"roster", len(roster),
			"group_exclusion", flags.GroupExclusion,
			"error", err,
		)
		return nil, err
	}

	tokens := make([]RecipientToken, 0, len(pairings))
	for _, p := range pairings {
		token, err := r.encoder.Encode(p.To)
		if err != nil {
			return nil, fmt.Errorf("encode recipient %d: %w", p.To, err)
		}
		tokens = append(tokens, RecipientToken{ParticipantID: p.From, Token: token})
	}

	// Postgres keeps microseconds
	drawnAt := time.Now().UTC().Truncate(time.Microsecond)
	if err := r.store.ApplyDraw(ctx, eventID, drawnAt, tokens); err != nil {
		return nil, fmt.Errorf("apply draw: %w", err)
	}

	outcome := &Outcome{
		RunID:    uuid.NewString(),
		EventID:  eventID,
		Attempt:  attempt,
		Pairings: len(pairings),
		DrawnAt:  drawnAt,
	}

	slog.Info("draw applied",
		"event_id", eventID,
		"run_id", outcome.RunID,
		"pairings", outcome.Pairings,
		"attempt", humanize.Ordinal(attempt),
	)

	return outcome, nil
}

// Reset clears every recipient of the event so it can be drawn again
func (r *Runner) Reset(ctx context.Context, eventID int64) error {
	if !r.locks.TryAcquire(eventID) {
		return ErrDrawInProgress
	}
	defer r.locks.Release(eventID)

	if err := r.store.ClearDraw(ctx, eventID); err != nil {
		return fmt.Errorf("clear draw: %w", err)
	}

	slog.Info("draw reset", "event_id", eventID)
	return nil
}
