// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"strconv"
	"testing"

	"github.com/danielhkuo/secret-friend/cliparse"
	"github.com/danielhkuo/secret-friend/codec"
	"github.com/danielhkuo/secret-friend/draw"
	"github.com/danielhkuo/secret-friend/store"
	"github.com/danielhkuo/secret-friend/testutil"
)

type testEnv struct {
	db     *sql.DB
	cfg    cliparse.Config
	store  *store.SQLStore
	tokens *codec.Codec
	runner *draw.Runner

	events *EventHandler
	groups *GroupHandler
	people *PersonHandler
	reveal *RevealHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()

	tokens, err := codec.New(cfg.TokenSecret)
	if err != nil {
		t.Fatalf("codec.New() error = %v", err)
	}
	st := store.New(db)
	runner := draw.NewRunner(st, tokens, nil)

	return &testEnv{
		db:     db,
		cfg:    cfg,
		store:  st,
		tokens: tokens,
		runner: runner,
		events: NewEventHandler(st, runner, cfg),
		groups: NewGroupHandler(st, cfg),
		people: NewPersonHandler(st, cfg),
		reveal: NewRevealHandler(st, tokens),
	}
}

func storeFilter(eventID int64) store.PersonFilter {
	return store.PersonFilter{EventID: eventID}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
