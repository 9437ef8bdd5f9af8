// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/store"
)

// TestSessionSecret signs session tokens in tests.
const TestSessionSecret = "test-session-secret"

// SetupTestDB creates a fresh SQLite database with the full schema in a temp dir
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "quickly-vote.db")
	conn, err := db.Open(context.Background(), db.SQLite, path, 0)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupTestStore returns a store over a fresh test database
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(SetupTestDB(t), db.SQLite)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   "file::memory:",
		DatabaseType:  cliparse.DatabaseSQLite,
		ElectionFile:  "election.yaml",
		AdminKeySalt:  "test-admin-salt",
		SessionSecret: TestSessionSecret,
		AuditInterval: time.Minute,

		AllowedOrigins: []string{"*"},
	}
}

// CreateTestElection creates an election with the given voting window
func CreateTestElection(t *testing.T, s *store.Store, opensAt, closesAt time.Time) models.Election {
	t.Helper()

	e := models.Election{
		ID:       uuid.NewString(),
		Name:     "Test Election",
		OpensAt:  opensAt.Truncate(time.Millisecond).UTC(),
		ClosesAt: closesAt.Truncate(time.Millisecond).UTC(),
	}
	if err := s.UpsertElection(context.Background(), e); err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	return e
}

// CreateOpenElection creates an election that opened an hour ago and closes in an hour
func CreateOpenElection(t *testing.T, s *store.Store) models.Election {
	t.Helper()
	now := time.Now()
	return CreateTestElection(t, s, now.Add(-time.Hour), now.Add(time.Hour))
}

// AddTestCandidate adds a candidate to an election and returns its ID
func AddTestCandidate(t *testing.T, s *store.Store, electionID, name string) string {
	t.Helper()

	candidateID := uuid.NewString()
	err := s.UpsertCandidate(context.Background(), models.Candidate{
		ID:          candidateID,
		ElectionID:  electionID,
		DisplayName: name,
	})
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return candidateID
}

// CandidateTally returns a candidate's current tally
func CandidateTally(t *testing.T, s *store.Store, electionID, candidateID string) int64 {
	t.Helper()

	candidates, err := s.Candidates(context.Background(), electionID)
	if err != nil {
		t.Fatalf("Failed to list candidates: %v", err)
	}
	for _, c := range candidates {
		if c.ID == candidateID {
			return c.Tally
		}
	}
	t.Fatalf("Candidate %s not found", candidateID)
	return 0
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
