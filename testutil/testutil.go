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

	"github.com/danielhkuo/smartecoq/auth"
	"github.com/danielhkuo/smartecoq/cliparse"
	"github.com/danielhkuo/smartecoq/db"
)

// TestDBURL is the in-memory SQLite store used by every test
const TestDBURL = ":memory:"

// SetupTestDB creates a fresh in-memory database with the full schema.
// Each call returns an independent store.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   TestDBURL,
		DatabaseType:  "sqlite",
		AdminKeySalt:  "test-admin-salt",
		CodeSalt:      "test-code-salt",
		DecayInterval: time.Second,
		ChatProvider:  "openai",
	}
}

// AdminKey returns a valid X-Admin-Key for the test configuration
func AdminKey(cfg cliparse.Config) string {
	return auth.GenerateAdminKey(auth.AdminScope, cfg.AdminKeySalt)
}

// CreateTestStand inserts a stand with an empty line and returns its ID.
// The decay clock starts at lastServed.
func CreateTestStand(t *testing.T, conn *sql.DB, name, kind string, capacity int, serviceSeconds float64, lastServed time.Time) string {
	t.Helper()

	standID, _ := auth.GenerateID(8)
	_, err := conn.Exec(`
		INSERT INTO stand (id, name, kind, max_capacity, queue_counter, arrivals, served,
			service_seconds, servers, lat, lon, last_served_at, created_at)
		VALUES ($1, $2, $3, $4, 0, 0, 0, $5, 1, 43.843, 10.508, $6, $7)
	`, standID, name, kind, capacity, serviceSeconds, lastServed.UTC(), lastServed.UTC())
	if err != nil {
		t.Fatalf("Failed to create test stand: %v", err)
	}

	return standID
}

// CountWaiting returns how many reservation rows of a stand are still waiting
func CountWaiting(t *testing.T, conn *sql.DB, standID string) int {
	t.Helper()

	var n int
	err := conn.QueryRow(`
		SELECT COUNT(*) FROM reservation WHERE stand_id = $1 AND status = 'waiting'
	`, standID).Scan(&n)
	if err != nil {
		t.Fatalf("Failed to count waiting reservations: %v", err)
	}
	return n
}

// QueueCounter reads a stand's stored queue_counter without applying decay
func QueueCounter(t *testing.T, conn *sql.DB, standID string) int {
	t.Helper()

	var n int
	err := conn.QueryRow("SELECT queue_counter FROM stand WHERE id = $1", standID).Scan(&n)
	if err != nil {
		t.Fatalf("Failed to read queue counter: %v", err)
	}
	return n
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
