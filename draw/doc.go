// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package draw assigns every participant of an event exactly one recipient.

# Engine

Engine.Draw takes a roster snapshot and returns one Pairing per participant:

	engine := draw.NewEngine(nil)
	pairings, err := engine.Draw(roster, groupExclusion)

The result is a permutation with no fixed points: everyone gives once,
everyone receives once, nobody draws themselves. With group exclusion on,
nobody draws a member of their own group either.

Each attempt walks the roster in order and picks uniformly among the
participants still available and allowed. An attempt that reaches a
participant with no allowed choice is thrown away. After len(roster) failed
attempts the engine gives up with a *FailureError (errors.Is ErrDrawFailed).
There is no backtracking, so a feasible roster can still fail; callers treat
that as an expected outcome.

Rosters with fewer than two participants, or a single group under group
exclusion, fail immediately.

# Runner

Runner ties the engine to persistence:

	runner := draw.NewRunner(st, tokens, nil)
	outcome, err := runner.Run(ctx, eventID)

Run holds a per-event lock, loads flags and roster, draws, encodes every
recipient, and hands all tokens to Store.ApplyDraw at once. If any step
fails nothing is written. RunDraw is the boolean form.

Reset clears all recipients and reopens the event.
*/
package draw
