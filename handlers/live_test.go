// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/quickly-tally/live"
	"github.com/danielhkuo/quickly-tally/testutil"
)

func TestLiveFeed(t *testing.T) {
	e := newTestEnv(t)
	pollID, adminKey := e.createPoll(t, ranked("Live", "A", "B"))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /polls/{id}/live", e.live.Stream)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/polls/" + pollID + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg live.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != live.MsgTally {
		t.Fatalf("Expected initial tally, got %s", msg.Type)
	}

	// Wait for the subscription before voting
	deadline := time.Now().Add(time.Second)
	for e.hub.Subscribers(pollID) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	testutil.AssertStatus(t, e.vote(pollID, "v1", []int{1, 2}), http.StatusCreated)
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	payload, ok := msg.Payload.(map[string]any)
	if msg.Type != live.MsgTally || !ok || payload["ballots"] != float64(1) {
		t.Fatalf("Expected tally with 1 ballot, got %+v", msg)
	}

	testutil.AssertStatus(t, e.close(pollID, adminKey), http.StatusOK)

	// Transcript entries arrive in order, then the closed marker
	index := 0
	for {
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatal(err)
		}
		if msg.Type == live.MsgClosed {
			break
		}
		if msg.Type != live.MsgTranscript {
			t.Fatalf("Unexpected message type %s", msg.Type)
		}
		entry := msg.Payload.(map[string]any)
		if entry["index"] != float64(index) {
			t.Errorf("Expected entry %d, got %v", index, entry["index"])
		}
		index++
	}
	if index == 0 {
		t.Error("Expected transcript entries before closed")
	}
}

func TestLiveFeedUnknownPoll(t *testing.T) {
	e := newTestEnv(t)
	testutil.AssertStatus(t, e.get(e.live.Stream, "missing", "/live"), http.StatusNotFound)
}

func TestLiveFeedClosedPoll(t *testing.T) {
	e := newTestEnv(t)
	pollID, adminKey := e.createPoll(t, ranked("Over", "A", "B"))
	testutil.AssertStatus(t, e.close(pollID, adminKey), http.StatusOK)

	testutil.AssertStatus(t, e.get(e.live.Stream, pollID, "/live"), http.StatusConflict)
}
