// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/secret-friend/auth"
	"github.com/danielhkuo/secret-friend/cliparse"
	"github.com/danielhkuo/secret-friend/db"
)

// TestDBURL is an in-memory SQLite database, private to each connection
const TestDBURL = ":memory:"

// SetupTestDB creates a fresh test database with the full schema.
// The database is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.DialectSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.DialectSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  TestDBURL,
		DatabaseType: db.DialectSQLite,
		AdminKeySalt: "test-admin-salt",
		TokenSecret:  "test-token-secret",
	}
}

// CreateTestEvent creates an open event and returns its ID and admin key
func CreateTestEvent(t *testing.T, conn *sql.DB, cfg cliparse.Config, groupExclusion bool) (eventID int64, adminKey string) {
	t.Helper()

	err := conn.QueryRow(`
		INSERT INTO event (name, group_exclusion, status, created_at)
		VALUES ('Test Event', $1, 'open', $2)
		RETURNING id
	`, groupExclusion, time.Now()).Scan(&eventID)
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}

	return eventID, auth.GenerateAdminKey(eventID, cfg.AdminKeySalt)
}

// AddTestGroup adds a group to an event and returns the group ID
func AddTestGroup(t *testing.T, conn *sql.DB, eventID int64, name string) int64 {
	t.Helper()

	var groupID int64
	err := conn.QueryRow(`
		INSERT INTO event_group (event_id, name)
		VALUES ($1, $2)
		RETURNING id
	`, eventID, name).Scan(&groupID)
	if err != nil {
		t.Fatalf("Failed to create test group: %v", err)
	}

	return groupID
}

// AddTestPerson adds a participant to a group and returns the person ID
func AddTestPerson(t *testing.T, conn *sql.DB, eventID, groupID int64, name, lookupKey string) int64 {
	t.Helper()

	var personID int64
	err := conn.QueryRow(`
		INSERT INTO person (event_id, group_id, name, lookup_key, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, eventID, groupID, name, lookupKey, time.Now()).Scan(&personID)
	if err != nil {
		t.Fatalf("Failed to create test person: %v", err)
	}

	return personID
}

// SetTestRecipientToken stores a raw recipient token on a person
func SetTestRecipientToken(t *testing.T, conn *sql.DB, personID int64, token string) {
	t.Helper()

	if _, err := conn.Exec(`UPDATE person SET recipient_token = $1 WHERE id = $2`, token, personID); err != nil {
		t.Fatalf("Failed to set recipient token: %v", err)
	}
}

// MarkTestEventDrawn flips an event to drawn without running a draw
func MarkTestEventDrawn(t *testing.T, conn *sql.DB, eventID int64) {
	t.Helper()

	if _, err := conn.Exec(`UPDATE event SET status = 'drawn', drawn_at = $1 WHERE id = $2`, time.Now(), eventID); err != nil {
		t.Fatalf("Failed to mark event drawn: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AdminHeaders returns the header map for an admin request
func AdminHeaders(adminKey string) map[string]string {
	return map[string]string{auth.AdminKeyHeader: adminKey}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
