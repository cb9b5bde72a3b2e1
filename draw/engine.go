// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package draw

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

var (
	ErrDrawFailed    = errors.New("draw could not be completed")
	ErrInvalidRoster = errors.New("invalid roster")
)

// Participant is the slice of a person the engine needs
type Participant struct {
	ID      int64
	GroupID int64
}

// Pairing assigns a gift recipient (To) to a giver (From)
type Pairing struct {
	From int64
	To   int64
}

// FailureError reports that no matching was found within the attempt budget.
// It unwraps to ErrDrawFailed.
type FailureError struct {
	Size     int
	Attempts int
	Reason   string
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("%s: %s (roster=%d, attempts=%d)", ErrDrawFailed, e.Reason, e.Size, e.Attempts)
}

func (e *FailureError) Unwrap() error {
	return ErrDrawFailed
}

// Engine computes random matchings. Not safe for concurrent use.
type Engine struct {
	rng *rand.Rand
}

// NewEngine creates an engine drawing from src. A nil src gets a time-seeded PCG.
func NewEngine(src rand.Source) *Engine {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	}
	return &Engine{rng: rand.New(src)}
}

// Draw returns one pairing per participant, in roster order
func (e *Engine) Draw(roster []Participant, groupExclusion bool) ([]Pairing, error) {
	pairings, _, err := e.DrawWithStats(roster, groupExclusion)
	return pairings, err
}

// DrawWithStats is Draw that also reports which attempt (1-indexed) succeeded
func (e *Engine) DrawWithStats(roster []Participant, groupExclusion bool) ([]Pairing, int, error) {
	n := len(roster)
	if n <= 1 {
		return nil, 0, &FailureError{Size: n, Reason: "at least two participants are required"}
	}

	seen := make(map[int64]bool, n)
	for _, p := range roster {
		if seen[p.ID] {
			return nil, 0, fmt.Errorf("%w: duplicate participant %d", ErrInvalidRoster, p.ID)
		}
		seen[p.ID] = true
	}

	if groupExclusion && singleGroup(roster) {
		return nil, 0, &FailureError{Size: n, Reason: "every participant is in the same group"}
	}

	// Budget is the roster size
	for attempt := 1; attempt <= n; attempt++ {
		if pairings, ok := e.attempt(roster, groupExclusion); ok {
			return pairings, attempt, nil
		}
	}

	return nil, n, &FailureError{Size: n, Attempts: n, Reason: "attempt budget exhausted"}
}

// attempt walks the roster once, consuming recipients from a fresh pool.
// It gives up as soon as a participant has no eligible recipient left.
func (e *Engine) attempt(roster []Participant, groupExclusion bool) ([]Pairing, bool) {
	pool := make([]Participant, len(roster))
	copy(pool, roster)

	pairings := make([]Pairing, 0, len(roster))
	eligible := make([]int, 0, len(roster))

	for _, giver := range roster {
		eligible = eligible[:0]
		for i, candidate := range pool {
			if candidate.ID == giver.ID {
				continue
			}
			if groupExclusion && candidate.GroupID == giver.GroupID {
				continue
			}
			eligible = append(eligible, i)
		}

		if len(eligible) == 0 {
			return nil, false
		}

		idx := eligible[e.rng.IntN(len(eligible))]
		pairings = append(pairings, Pairing{From: giver.ID, To: pool[idx].ID})

		// Order of the pool does not matter, swap-remove
		last := len(pool) - 1
		pool[idx] = pool[last]
		pool = pool[:last]
	}

	return pairings, true
}

func singleGroup(roster []Participant) bool {
	for _, p := range roster[1:] {
		if p.GroupID != roster[0].GroupID {
			return false
		}
	}
	return true
}
