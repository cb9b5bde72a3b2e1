// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielhkuo/secret-friend/draw"
	"github.com/danielhkuo/secret-friend/models"
	"github.com/danielhkuo/secret-friend/testutil"
)

func setupStore(t *testing.T) (*SQLStore, context.Context) {
	t.Helper()
	return New(testutil.SetupTestDB(t)), context.Background()
}

func TestCreateAndGetEvent(t *testing.T) {
	s, ctx := setupStore(t)

	id, err := s.CreateEvent(ctx, "Office Party", true)
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	ev, err := s.GetEvent(ctx, id)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if ev.Name != "Office Party" || !ev.GroupExclusion || ev.Status != models.StatusOpen {
		t.Errorf("GetEvent() = %+v", ev)
	}
	if ev.DrawnAt != nil {
		t.Error("new event should not have drawn_at")
	}

	if _, err := s.GetEvent(ctx, id+100); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetEvent(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUpdateEvent(t *testing.T) {
	s, ctx := setupStore(t)
	id, _ := s.CreateEvent(ctx, "Before", false)

	name := "After"
	if err := s.UpdateEvent(ctx, id, EventUpdate{Name: &name}); err != nil {
		t.Fatalf("UpdateEvent(name) error = %v", err)
	}
	exclusion := true
	if err := s.UpdateEvent(ctx, id, EventUpdate{GroupExclusion: &exclusion}); err != nil {
		t.Fatalf("UpdateEvent(exclusion) error = %v", err)
	}

	ev, _ := s.GetEvent(ctx, id)
	if ev.Name != "After" {
		t.Errorf("name = %q, want %q", ev.Name, "After")
	}
	if !ev.GroupExclusion {
		t.Error("group exclusion should be on")
	}

	if err := s.UpdateEvent(ctx, id+100, EventUpdate{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateEvent(missing) error = %v, want ErrNotFound", err)
	}

	if err := s.ApplyDraw(ctx, id, time.Now(), nil); err != nil {
		t.Fatalf("ApplyDraw() error = %v", err)
	}
	if err := s.UpdateEvent(ctx, id, EventUpdate{Name: &name}); !errors.Is(err, ErrEventDrawn) {
		t.Errorf("UpdateEvent(drawn) error = %v, want ErrEventDrawn", err)
	}
}

func TestGroups(t *testing.T) {
	s, ctx := setupStore(t)
	id, _ := s.CreateEvent(ctx, "Family", true)

	g1, err := s.CreateGroup(ctx, id, "Smiths")
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	if _, err := s.CreateGroup(ctx, id, "Joneses"); err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	if _, err := s.CreateGroup(ctx, id, "Smiths"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("CreateGroup(duplicate) error = %v, want ErrDuplicate", err)
	}
	if _, err := s.CreateGroup(ctx, id+100, "Ghosts"); !errors.Is(err, ErrNotFound) {
		t.Errorf("CreateGroup(missing event) error = %v, want ErrNotFound", err)
	}

	groups, err := s.ListGroups(ctx, id)
	if err != nil {
		t.Fatalf("ListGroups() error = %v", err)
	}
	if len(groups) != 2 || groups[0].ID != g1 || groups[0].Name != "Smiths" {
		t.Errorf("ListGroups() = %+v", groups)
	}

	// Deleting a group removes its people
	p := PersonInput{GroupID: g1, Name: "Ann Smith", LookupKey: "ann-key"}
	if _, err := s.CreatePerson(ctx, id, p); err != nil {
		t.Fatalf("CreatePerson() error = %v", err)
	}
	if err := s.DeleteGroup(ctx, id, g1); err != nil {
		t.Fatalf("DeleteGroup() error = %v", err)
	}
	people, _ := s.ListPeople(ctx, PersonFilter{EventID: id})
	if len(people) != 0 {
		t.Errorf("expected people of deleted group to be removed, got %d", len(people))
	}
	if err := s.DeleteGroup(ctx, id, g1); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("DeleteGroup(again) error = %v, want ErrGroupNotFound", err)
	}
}

func TestPeople(t *testing.T) {
	s, ctx := setupStore(t)
	id, _ := s.CreateEvent(ctx, "Office", false)
	other, _ := s.CreateEvent(ctx, "Other", false)
	g1, _ := s.CreateGroup(ctx, id, "Sales")
	g2, _ := s.CreateGroup(ctx, id, "Support")
	foreign, _ := s.CreateGroup(ctx, other, "Elsewhere")

	alice, err := s.CreatePerson(ctx, id, PersonInput{GroupID: g1, Name: "Alice", LookupKey: "alice-key"})
	if err != nil {
		t.Fatalf("CreatePerson() error = %v", err)
	}
	bob, _ := s.CreatePerson(ctx, id, PersonInput{GroupID: g2, Name: "Bob", LookupKey: "bob-key"})

	t.Run("duplicate lookup key", func(t *testing.T) {
		_, err := s.CreatePerson(ctx, id, PersonInput{GroupID: g2, Name: "Alicia", LookupKey: "alice-key"})
		if !errors.Is(err, ErrDuplicate) {
			t.Errorf("error = %v, want ErrDuplicate", err)
		}
	})

	t.Run("same lookup key in another event", func(t *testing.T) {
		if _, err := s.CreatePerson(ctx, other, PersonInput{GroupID: foreign, Name: "Alice", LookupKey: "alice-key"}); err != nil {
			t.Errorf("error = %v, want nil", err)
		}
	})

	t.Run("group from another event", func(t *testing.T) {
		_, err := s.CreatePerson(ctx, id, PersonInput{GroupID: foreign, Name: "Eve", LookupKey: "eve-key"})
		if !errors.Is(err, ErrGroupNotFound) {
			t.Errorf("error = %v, want ErrGroupNotFound", err)
		}
	})

	t.Run("filter by group", func(t *testing.T) {
		people, err := s.ListPeople(ctx, PersonFilter{EventID: id, GroupID: &g2})
		if err != nil {
			t.Fatal(err)
		}
		if len(people) != 1 || people[0].ID != bob {
			t.Errorf("ListPeople(group) = %+v", people)
		}
	})

	t.Run("find by lookup key", func(t *testing.T) {
		key := "alice-key"
		p, err := s.FindPerson(ctx, PersonFilter{EventID: id, LookupKey: &key})
		if err != nil {
			t.Fatal(err)
		}
		if p.ID != alice || p.Name != "Alice" || p.HasRecipient {
			t.Errorf("FindPerson() = %+v", p)
		}

		missing := "nobody"
		if _, err := s.FindPerson(ctx, PersonFilter{EventID: id, LookupKey: &missing}); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindPerson(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("find by id is scoped to the event", func(t *testing.T) {
		if _, err := s.FindPerson(ctx, PersonFilter{EventID: other, ID: &alice}); !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := s.DeletePerson(ctx, id, bob); err != nil {
			t.Fatal(err)
		}
		if err := s.DeletePerson(ctx, id, bob); !errors.Is(err, ErrNotFound) {
			t.Errorf("DeletePerson(again) error = %v, want ErrNotFound", err)
		}
	})
}

func TestFetchRoster(t *testing.T) {
	s, ctx := setupStore(t)
	id, _ := s.CreateEvent(ctx, "Roster", true)
	g1, _ := s.CreateGroup(ctx, id, "A")
	g2, _ := s.CreateGroup(ctx, id, "B")
	p1, _ := s.CreatePerson(ctx, id, PersonInput{GroupID: g1, Name: "One", LookupKey: "key-1"})
	p2, _ := s.CreatePerson(ctx, id, PersonInput{GroupID: g2, Name: "Two", LookupKey: "key-2"})

	flags, err := s.FetchEventFlags(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !flags.GroupExclusion {
		t.Error("expected group exclusion flag")
	}

	roster, err := s.FetchRoster(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	want := []draw.Participant{{ID: p1, GroupID: g1}, {ID: p2, GroupID: g2}}
	if len(roster) != len(want) || roster[0] != want[0] || roster[1] != want[1] {
		t.Errorf("FetchRoster() = %+v, want %+v", roster, want)
	}

	if _, err := s.FetchRoster(ctx, id+100); !errors.Is(err, ErrNotFound) {
		t.Errorf("FetchRoster(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := s.FetchEventFlags(ctx, id+100); !errors.Is(err, ErrNotFound) {
		t.Errorf("FetchEventFlags(missing) error = %v, want ErrNotFound", err)
	}
}

func TestApplyAndClearDraw(t *testing.T) {
	s, ctx := setupStore(t)
	id, _ := s.CreateEvent(ctx, "Draw", false)
	g, _ := s.CreateGroup(ctx, id, "Everyone")
	p1, _ := s.CreatePerson(ctx, id, PersonInput{GroupID: g, Name: "One", LookupKey: "key-1"})
	p2, _ := s.CreatePerson(ctx, id, PersonInput{GroupID: g, Name: "Two", LookupKey: "key-2"})

	tokens := []draw.RecipientToken{{ParticipantID: p1, Token: "tok-2"}, {ParticipantID: p2, Token: "tok-1"}}

	t.Run("roster mismatch writes nothing", func(t *testing.T) {
		err := s.ApplyDraw(ctx, id, time.Now(), tokens[:1])
		if !errors.Is(err, ErrRosterChanged) {
			t.Fatalf("error = %v, want ErrRosterChanged", err)
		}
		ev, _ := s.GetEvent(ctx, id)
		if ev.Status != models.StatusOpen {
			t.Errorf("status = %s, want open", ev.Status)
		}
		people, _ := s.ListPeople(ctx, PersonFilter{EventID: id})
		for _, p := range people {
			if p.HasRecipient {
				t.Errorf("person %d has a recipient after a failed apply", p.ID)
			}
		}
	})

	t.Run("unknown participant rolls back", func(t *testing.T) {
		bad := []draw.RecipientToken{{ParticipantID: p1, Token: "x"}, {ParticipantID: p2 + 100, Token: "y"}}
		if err := s.ApplyDraw(ctx, id, time.Now(), bad); !errors.Is(err, ErrRosterChanged) {
			t.Fatalf("error = %v, want ErrRosterChanged", err)
		}
		p, _ := s.FindPerson(ctx, PersonFilter{EventID: id, ID: &p1})
		if p.HasRecipient {
			t.Error("token written despite rollback")
		}
	})

	t.Run("apply", func(t *testing.T) {
		drawnAt := time.Date(2026, 12, 1, 18, 30, 5, 250000000, time.UTC)
		if err := s.ApplyDraw(ctx, id, drawnAt, tokens); err != nil {
			t.Fatalf("ApplyDraw() error = %v", err)
		}
		ev, _ := s.GetEvent(ctx, id)
		if ev.Status != models.StatusDrawn || ev.DrawnAt == nil {
			t.Fatalf("event after draw = %+v", ev)
		}
		if !ev.DrawnAt.Equal(drawnAt) {
			t.Errorf("drawn_at = %v, want %v", *ev.DrawnAt, drawnAt)
		}
		p, _ := s.FindPerson(ctx, PersonFilter{EventID: id, ID: &p1})
		if p.RecipientToken != "tok-2" || !p.HasRecipient {
			t.Errorf("person after draw = %+v", p)
		}
	})

	t.Run("second apply rejected", func(t *testing.T) {
		if err := s.ApplyDraw(ctx, id, time.Now(), tokens); !errors.Is(err, ErrEventDrawn) {
			t.Errorf("error = %v, want ErrEventDrawn", err)
		}
	})

	t.Run("membership frozen once drawn", func(t *testing.T) {
		if _, err := s.CreatePerson(ctx, id, PersonInput{GroupID: g, Name: "Late", LookupKey: "late-key"}); !errors.Is(err, ErrEventDrawn) {
			t.Errorf("CreatePerson() error = %v, want ErrEventDrawn", err)
		}
		if err := s.DeletePerson(ctx, id, p1); !errors.Is(err, ErrEventDrawn) {
			t.Errorf("DeletePerson() error = %v, want ErrEventDrawn", err)
		}
		if err := s.DeleteGroup(ctx, id, g); !errors.Is(err, ErrEventDrawn) {
			t.Errorf("DeleteGroup() error = %v, want ErrEventDrawn", err)
		}
	})

	t.Run("clear", func(t *testing.T) {
		if err := s.ClearDraw(ctx, id); err != nil {
			t.Fatalf("ClearDraw() error = %v", err)
		}
		ev, _ := s.GetEvent(ctx, id)
		if ev.Status != models.StatusOpen || ev.DrawnAt != nil {
			t.Errorf("event after clear = %+v", ev)
		}
		people, _ := s.ListPeople(ctx, PersonFilter{EventID: id})
		for _, p := range people {
			if p.HasRecipient {
				t.Errorf("person %d still has a recipient", p.ID)
			}
		}
	})

	if err := s.ClearDraw(ctx, id+100); !errors.Is(err, ErrNotFound) {
		t.Errorf("ClearDraw(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteEvent(t *testing.T) {
	s, ctx := setupStore(t)
	id, _ := s.CreateEvent(ctx, "Gone", false)
	g, _ := s.CreateGroup(ctx, id, "G")
	s.CreatePerson(ctx, id, PersonInput{GroupID: g, Name: "Someone", LookupKey: "some-key"})

	if err := s.DeleteEvent(ctx, id); err != nil {
		t.Fatalf("DeleteEvent() error = %v", err)
	}
	if _, err := s.GetEvent(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetEvent() after delete error = %v, want ErrNotFound", err)
	}
	people, _ := s.ListPeople(ctx, PersonFilter{EventID: id})
	if len(people) != 0 {
		t.Errorf("expected cascade delete of people, got %d", len(people))
	}
	if err := s.DeleteEvent(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteEvent(again) error = %v, want ErrNotFound", err)
	}
}

// drawDuringMembershipWrite starts a draw of tokens once the membership write
// has passed its status check, and returns the draw's result channel
func drawDuringMembershipWrite(t *testing.T, s *SQLStore, ctx context.Context, eventID int64, tokens []draw.RecipientToken) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	beforeMembershipWrite = func() {
		go func() { done <- s.ApplyDraw(ctx, eventID, time.Now(), tokens) }()
		time.Sleep(50 * time.Millisecond)
	}
	t.Cleanup(func() { beforeMembershipWrite = func() {} })
	return done
}

func TestMembershipWriteRacingDraw(t *testing.T) {
	setup := func(t *testing.T) (*SQLStore, context.Context, int64, int64, []draw.RecipientToken) {
		s, ctx := setupStore(t)
		id, _ := s.CreateEvent(ctx, "Race", false)
		g, _ := s.CreateGroup(ctx, id, "Everyone")
		p1, _ := s.CreatePerson(ctx, id, PersonInput{GroupID: g, Name: "One", LookupKey: "key-1"})
		p2, _ := s.CreatePerson(ctx, id, PersonInput{GroupID: g, Name: "Two", LookupKey: "key-2"})
		tokens := []draw.RecipientToken{{ParticipantID: p1, Token: "tok-2"}, {ParticipantID: p2, Token: "tok-1"}}
		return s, ctx, id, g, tokens
	}

	assertUndrawn := func(t *testing.T, s *SQLStore, ctx context.Context, id int64, wantPeople int) {
		t.Helper()
		ev, _ := s.GetEvent(ctx, id)
		if ev.Status != models.StatusOpen {
			t.Errorf("status = %s, want open", ev.Status)
		}
		people, _ := s.ListPeople(ctx, PersonFilter{EventID: id})
		if len(people) != wantPeople {
			t.Errorf("got %d people, want %d", len(people), wantPeople)
		}
		for _, p := range people {
			if p.HasRecipient {
				t.Errorf("person %d has a recipient", p.ID)
			}
		}
	}

	t.Run("create person", func(t *testing.T) {
		s, ctx, id, g, tokens := setup(t)
		done := drawDuringMembershipWrite(t, s, ctx, id, tokens)

		if _, err := s.CreatePerson(ctx, id, PersonInput{GroupID: g, Name: "Late", LookupKey: "late-key"}); err != nil {
			t.Fatalf("CreatePerson() error = %v", err)
		}
		if err := <-done; !errors.Is(err, ErrRosterChanged) {
			t.Fatalf("ApplyDraw() error = %v, want ErrRosterChanged", err)
		}
		assertUndrawn(t, s, ctx, id, 3)
	})

	t.Run("delete person", func(t *testing.T) {
		s, ctx, id, _, tokens := setup(t)
		done := drawDuringMembershipWrite(t, s, ctx, id, tokens)

		if err := s.DeletePerson(ctx, id, tokens[1].ParticipantID); err != nil {
			t.Fatalf("DeletePerson() error = %v", err)
		}
		if err := <-done; !errors.Is(err, ErrRosterChanged) {
			t.Fatalf("ApplyDraw() error = %v, want ErrRosterChanged", err)
		}
		assertUndrawn(t, s, ctx, id, 1)
	})

	t.Run("delete group", func(t *testing.T) {
		s, ctx, id, g, tokens := setup(t)
		done := drawDuringMembershipWrite(t, s, ctx, id, tokens)

		if err := s.DeleteGroup(ctx, id, g); err != nil {
			t.Fatalf("DeleteGroup() error = %v", err)
		}
		if err := <-done; !errors.Is(err, ErrRosterChanged) {
			t.Fatalf("ApplyDraw() error = %v, want ErrRosterChanged", err)
		}
		assertUndrawn(t, s, ctx, id, 0)
	})

	t.Run("draw committed first", func(t *testing.T) {
		s, ctx, id, g, tokens := setup(t)

		// status read as open, then the draw commits before the write
		ev, _ := s.GetEvent(ctx, id)
		if ev.Status != models.StatusOpen {
			t.Fatalf("status = %s, want open", ev.Status)
		}
		if err := s.ApplyDraw(ctx, id, time.Now(), tokens); err != nil {
			t.Fatalf("ApplyDraw() error = %v", err)
		}

		if _, err := s.CreatePerson(ctx, id, PersonInput{GroupID: g, Name: "Late", LookupKey: "late-key"}); !errors.Is(err, ErrEventDrawn) {
			t.Errorf("CreatePerson() error = %v, want ErrEventDrawn", err)
		}
		if err := s.DeletePerson(ctx, id, tokens[0].ParticipantID); !errors.Is(err, ErrEventDrawn) {
			t.Errorf("DeletePerson() error = %v, want ErrEventDrawn", err)
		}
		if err := s.DeleteGroup(ctx, id, g); !errors.Is(err, ErrEventDrawn) {
			t.Errorf("DeleteGroup() error = %v, want ErrEventDrawn", err)
		}
		people, _ := s.ListPeople(ctx, PersonFilter{EventID: id})
		if len(people) != 2 {
			t.Errorf("got %d people after rejected writes, want 2", len(people))
		}
	})
}
