// Copyright (c) 2025 uulzah.link.
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

	_ "modernc.org/sqlite"

	"github.com/random-mongol/uulzah.link/auth"
	"github.com/random-mongol/uulzah.link/cliparse"
	"github.com/random-mongol/uulzah.link/db"
)

// SetupTestDB creates a fresh in-memory sqlite database with the full
// schema. The pool is capped at one connection: an in-memory sqlite
// database exists per connection, so a second one would see no tables.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn, db.DialectSqlite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  ":memory:",
		DatabaseType: "sqlite",
		BaseURL:      "https://uulzah.link",
	}
}

// CreateTestEvent creates a live event and returns its id and edit
// token. fingerprint may be empty, which stores NULL.
func CreateTestEvent(t *testing.T, conn *sql.DB, title, fingerprint string) (eventID, editToken string) {
	t.Helper()

	eventID, _ = auth.NewPublicID()
	editToken, _ = auth.NewSecretToken()

	var fp sql.NullString
	if fingerprint != "" {
		fp = sql.NullString{String: fingerprint, Valid: true}
	}

	_, err := conn.Exec(`
		INSERT INTO events (id, title, description, edit_token, creator_fingerprint,
		                    timezone, view_count, response_count, created_at)
		VALUES ($1, $2, 'A test event', $3, $4, 'Asia/Ulaanbaatar', 0, 0, $5)
	`, eventID, title, editToken, fp, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}

	return eventID, editToken
}

// AddTestDate adds a candidate slot to an event and returns its id.
func AddTestDate(t *testing.T, conn *sql.DB, eventID string, start time.Time, order int) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO event_dates (event_id, start_datetime, is_all_day, display_order)
		VALUES ($1, $2, FALSE, $3)
		RETURNING id
	`, eventID, start, order).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test date: %v", err)
	}

	return id
}

// CreateTestParticipant inserts a participant row and returns its id.
func CreateTestParticipant(t *testing.T, conn *sql.DB, eventID, name string) int64 {
	t.Helper()

	token, _ := auth.NewSecretToken()
	var id int64
	err := conn.QueryRow(`
		INSERT INTO participants (event_id, name, response_token, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, eventID, name, token, time.Now()).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test participant: %v", err)
	}

	return id
}

// AddTestResponse records one availability status.
func AddTestResponse(t *testing.T, conn *sql.DB, participantID, eventDateID int64, status string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO responses (participant_id, event_date_id, status)
		VALUES ($1, $2, $3)
	`, participantID, eventDateID, status)
	if err != nil {
		t.Fatalf("Failed to create test response: %v", err)
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
