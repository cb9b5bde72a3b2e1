// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/secret-friend/models"
	"github.com/danielhkuo/secret-friend/testutil"
)

func TestCreateGroup(t *testing.T) {
	env := newTestEnv(t)
	eventID, adminKey := testutil.CreateTestEvent(t, env.db, env.cfg, true)
	drawnID, drawnKey := testutil.CreateTestEvent(t, env.db, env.cfg, true)
	testutil.MarkTestEventDrawn(t, env.db, drawnID)

	tests := []struct {
		name           string
		eventID        int64
		adminKey       string
		body           interface{}
		expectedStatus int
	}{
		{"valid group", eventID, adminKey, models.CreateGroupRequest{Name: "Smiths"}, http.StatusCreated},
		{"duplicate name", eventID, adminKey, models.CreateGroupRequest{Name: "Smiths"}, http.StatusConflict},
		{"missing name", eventID, adminKey, models.CreateGroupRequest{}, http.StatusBadRequest},
		{"drawn event", drawnID, drawnKey, models.CreateGroupRequest{Name: "Late"}, http.StatusConflict},
		{"invalid admin key", eventID, "nope", models.CreateGroupRequest{Name: "Joneses"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/events/"+itoa(tt.eventID)+"/groups", tt.body, testutil.AdminHeaders(tt.adminKey))
			req.SetPathValue("id", itoa(tt.eventID))
			w := httptest.NewRecorder()

			env.groups.CreateGroup(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus == http.StatusCreated {
				var resp models.CreateGroupResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.GroupID <= 0 {
					t.Error("Expected positive group_id")
				}
			}
		})
	}
}

func TestListAndDeleteGroups(t *testing.T) {
	env := newTestEnv(t)
	eventID, adminKey := testutil.CreateTestEvent(t, env.db, env.cfg, true)
	g1 := testutil.AddTestGroup(t, env.db, eventID, "Smiths")
	testutil.AddTestGroup(t, env.db, eventID, "Joneses")

	req := testutil.MakeRequest("GET", "/events/"+itoa(eventID)+"/groups", nil, testutil.AdminHeaders(adminKey))
	req.SetPathValue("id", itoa(eventID))
	w := httptest.NewRecorder()
	env.groups.ListGroups(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var groups []models.Group
	testutil.AssertJSON(t, w, &groups)
	if len(groups) != 2 || groups[0].Name != "Smiths" {
		t.Errorf("Unexpected groups: %+v", groups)
	}

	tests := []struct {
		name           string
		groupID        string
		expectedStatus int
	}{
		{"delete existing", itoa(g1), http.StatusNoContent},
		{"delete again", itoa(g1), http.StatusNotFound},
		{"bad group id", "x", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("DELETE", "/events/"+itoa(eventID)+"/groups/"+tt.groupID, nil, testutil.AdminHeaders(adminKey))
			req.SetPathValue("id", itoa(eventID))
			req.SetPathValue("groupID", tt.groupID)
			w := httptest.NewRecorder()

			env.groups.DeleteGroup(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestCreatePerson(t *testing.T) {
	env := newTestEnv(t)
	eventID, adminKey := testutil.CreateTestEvent(t, env.db, env.cfg, true)
	groupID := testutil.AddTestGroup(t, env.db, eventID, "Smiths")
	otherID, _ := testutil.CreateTestEvent(t, env.db, env.cfg, true)
	foreignGroup := testutil.AddTestGroup(t, env.db, otherID, "Elsewhere")

	tests := []struct {
		name           string
		body           models.CreatePersonRequest
		expectedStatus int
	}{
		{"valid person", models.CreatePersonRequest{Name: "Ann", LookupKey: "ann-key", GroupID: groupID}, http.StatusCreated},
		{"duplicate lookup key", models.CreatePersonRequest{Name: "Anna", LookupKey: "ann-key", GroupID: groupID}, http.StatusConflict},
		{"short lookup key", models.CreatePersonRequest{Name: "Al", LookupKey: "k", GroupID: groupID}, http.StatusBadRequest},
		{"missing group", models.CreatePersonRequest{Name: "Al", LookupKey: "al-key"}, http.StatusBadRequest},
		{"group of another event", models.CreatePersonRequest{Name: "Al", LookupKey: "al-key", GroupID: foreignGroup}, http.StatusNotFound},
		{"unknown group", models.CreatePersonRequest{Name: "Al", LookupKey: "al-key", GroupID: 9999}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/events/"+itoa(eventID)+"/people", tt.body, testutil.AdminHeaders(adminKey))
			req.SetPathValue("id", itoa(eventID))
			w := httptest.NewRecorder()

			env.people.CreatePerson(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestListPeople(t *testing.T) {
	env := newTestEnv(t)
	eventID, adminKey := testutil.CreateTestEvent(t, env.db, env.cfg, true)
	g1 := testutil.AddTestGroup(t, env.db, eventID, "Smiths")
	g2 := testutil.AddTestGroup(t, env.db, eventID, "Joneses")
	testutil.AddTestPerson(t, env.db, eventID, g1, "Ann", "ann-key")
	testutil.AddTestPerson(t, env.db, eventID, g2, "Bea", "bea-key")
	testutil.AddTestPerson(t, env.db, eventID, g2, "Bo", "bo-key")

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedCount  int
	}{
		{"all people", "", http.StatusOK, 3},
		{"filtered by group", "?group_id=" + itoa(g2), http.StatusOK, 2},
		{"empty group filter result", "?group_id=9999", http.StatusOK, 0},
		{"bad group filter", "?group_id=abc", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/events/"+itoa(eventID)+"/people"+tt.query, nil, testutil.AdminHeaders(adminKey))
			req.SetPathValue("id", itoa(eventID))
			w := httptest.NewRecorder()

			env.people.ListPeople(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}
			var people []models.Person
			testutil.AssertJSON(t, w, &people)
			if len(people) != tt.expectedCount {
				t.Errorf("Expected %d people, got %d", tt.expectedCount, len(people))
			}
		})
	}
}

func TestDeletePerson(t *testing.T) {
	env := newTestEnv(t)
	eventID, adminKey := testutil.CreateTestEvent(t, env.db, env.cfg, false)
	g := testutil.AddTestGroup(t, env.db, eventID, "Everyone")
	ann := testutil.AddTestPerson(t, env.db, eventID, g, "Ann", "ann-key")
	bea := testutil.AddTestPerson(t, env.db, eventID, g, "Bea", "bea-key")

	del := func(personID int64) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("DELETE", "/events/"+itoa(eventID)+"/people/"+itoa(personID), nil, testutil.AdminHeaders(adminKey))
		req.SetPathValue("id", itoa(eventID))
		req.SetPathValue("personID", itoa(personID))
		w := httptest.NewRecorder()
		env.people.DeletePerson(w, req)
		return w
	}

	testutil.AssertStatus(t, del(ann), http.StatusNoContent)
	testutil.AssertStatus(t, del(ann), http.StatusNotFound)

	// Membership is frozen once drawn
	testutil.MarkTestEventDrawn(t, env.db, eventID)
	testutil.AssertStatus(t, del(bea), http.StatusConflict)
}
