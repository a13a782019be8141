// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-tally/cliparse"
	"github.com/danielhkuo/quickly-tally/db"
	"github.com/danielhkuo/quickly-tally/election"
	"github.com/danielhkuo/quickly-tally/poll"
)

var dbCounter atomic.Int64

// SetupTestDB opens a private in-memory sqlite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// a unique name keeps parallel tests from sharing one memory database
	url := fmt.Sprintf("file:test%d?mode=memory&cache=shared", dbCounter.Add(1))
	conn, err := db.Open(db.TypeSQLite, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   ":memory:",
		DatabaseType:  db.TypeSQLite,
		AdminKeySalt:  "test-admin-salt",
		WatchInterval: time.Minute,
		AnnounceDelay: 0,
		MaxRounds:     election.DefaultMaxRounds,
		LogLevel:      "error",
		LogFormat:     "text",
	}
}

// CreateTestPoll opens a poll in the registry and records it in the store
func CreateTestPoll(t *testing.T, registry *poll.Registry, store *db.Store, method election.Method, candidates ...string) *poll.Poll {
	t.Helper()

	var persist func(poll.Snapshot) error
	if store != nil {
		persist = func(snap poll.Snapshot) error {
			return store.SavePoll(context.Background(), snap)
		}
	}
	p, err := registry.CreateWith(poll.Options{
		Name:       fmt.Sprintf("Test Poll %d", dbCounter.Add(1)),
		Creator:    "TestUser",
		Method:     method,
		Candidates: candidates,
		TimeLimit:  time.Hour,
	}, persist)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return p
}

// SubmitTestBallot accepts a ballot and records it the way the handler does
func SubmitTestBallot(t *testing.T, store *db.Store, p *poll.Poll, voterID string, ballot []int) {
	t.Helper()

	pos, err := p.Accept(voterID, ballot)
	if err != nil {
		t.Fatalf("Failed to submit test ballot: %v", err)
	}
	if store != nil {
		if _, err := store.SaveBallot(context.Background(), p.ID, voterID, pos, ballot); err != nil {
			t.Fatalf("Failed to save test ballot: %v", err)
		}
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
