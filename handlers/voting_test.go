// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/danielhkuo/quickly-tally/models"
	"github.com/danielhkuo/quickly-tally/poll"
	"github.com/danielhkuo/quickly-tally/testutil"
)

type recordingBroadcaster struct {
	mu   sync.Mutex
	msgs map[string][]any
}

func (b *recordingBroadcaster) Broadcast(pollID string, msg any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.msgs == nil {
		b.msgs = make(map[string][]any)
	}
	b.msgs[pollID] = append(b.msgs[pollID], msg)
}

func TestSubmitBallot(t *testing.T) {
	e := newTestEnv(t)
	pollID, _ := e.createPoll(t, ranked("Lunch", "Pizza", "Sushi", "Tacos"))

	tests := []struct {
		name       string
		pollID     string
		voterID    string
		body       any
		wantStatus int
	}{
		{"valid ballot", pollID, "voter-1", models.SubmitBallotRequest{Ballot: []int{1, 2, 3}}, http.StatusCreated},
		{"partial ranking", pollID, "voter-2", models.SubmitBallotRequest{Ballot: []int{1, 0, 0}}, http.StatusCreated},
		{"blank ballot", pollID, "voter-3", models.SubmitBallotRequest{Ballot: []int{0, 0, 0}}, http.StatusCreated},
		{"missing voter id", pollID, "", models.SubmitBallotRequest{Ballot: []int{1, 2, 3}}, http.StatusBadRequest},
		{"wrong length", pollID, "voter-4", models.SubmitBallotRequest{Ballot: []int{1, 2}}, http.StatusBadRequest},
		{"rank out of range", pollID, "voter-5", models.SubmitBallotRequest{Ballot: []int{1, 2, 4}}, http.StatusBadRequest},
		{"negative rank", pollID, "voter-6", models.SubmitBallotRequest{Ballot: []int{-1, 2, 3}}, http.StatusBadRequest},
		{"invalid JSON", pollID, "voter-7", "not json", http.StatusBadRequest},
		{"unknown poll", "missing", "voter-8", models.SubmitBallotRequest{Ballot: []int{1, 2, 3}}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if s, ok := tt.body.(string); ok {
				req = httptest.NewRequest("POST", "/polls/"+tt.pollID+"/ballots", strings.NewReader(s))
			} else {
				req = testutil.MakeRequest("POST", "/polls/"+tt.pollID+"/ballots", tt.body, nil)
			}
			req.SetPathValue("id", tt.pollID)
			if tt.voterID != "" {
				req.Header.Set("X-Voter-ID", tt.voterID)
			}
			w := httptest.NewRecorder()

			e.voting.SubmitBallot(w, req)
			testutil.AssertStatus(t, w, tt.wantStatus)

			if tt.wantStatus == http.StatusCreated {
				var resp models.SubmitBallotResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.BallotID == "" {
					t.Error("Expected ballot_id in response")
				}
			}
		})
	}

	p, err := e.registry.Get(pollID)
	if err != nil {
		t.Fatal(err)
	}
	if p.BallotCount() != 3 {
		t.Errorf("Expected 3 accepted ballots, got %d", p.BallotCount())
	}
}

func TestSubmitScoreBallot(t *testing.T) {
	e := newTestEnv(t)
	pollID, _ := e.createPoll(t, models.CreatePollRequest{
		Name: "Stars", Method: "star", Candidates: []string{"A", "B", "C"},
	})

	testutil.AssertStatus(t, e.vote(pollID, "v1", []int{5, 3, 0}), http.StatusCreated)
	testutil.AssertStatus(t, e.vote(pollID, "v2", []int{6, 0, 0}), http.StatusBadRequest)
}

func TestSubmitBallotDuplicateVoter(t *testing.T) {
	e := newTestEnv(t)
	pollID, _ := e.createPoll(t, ranked("Lunch", "Pizza", "Sushi"))

	testutil.AssertStatus(t, e.vote(pollID, "voter-1", []int{1, 2}), http.StatusCreated)
	testutil.AssertStatus(t, e.vote(pollID, "voter-1", []int{2, 1}), http.StatusConflict)
	// Surrounding whitespace does not make a new voter
	testutil.AssertStatus(t, e.vote(pollID, " voter-1 ", []int{2, 1}), http.StatusConflict)

	var count int
	summary, err := e.store.GetPollSummary(context.Background(), pollID)
	if err != nil {
		t.Fatal(err)
	}
	count = summary.BallotCount
	if count != 1 {
		t.Errorf("Expected 1 recorded ballot, got %d", count)
	}
}

func TestSubmitBallotToClosedPoll(t *testing.T) {
	e := newTestEnv(t)
	pollID, adminKey := e.createPoll(t, ranked("Lunch", "Pizza", "Sushi"))
	testutil.AssertStatus(t, e.close(pollID, adminKey), http.StatusOK)

	testutil.AssertStatus(t, e.vote(pollID, "late-voter", []int{1, 2}), http.StatusConflict)
}

func TestSubmitBallotBroadcastsTally(t *testing.T) {
	e := newTestEnv(t)
	updates := &recordingBroadcaster{}
	e.voting = NewVotingHandler(e.registry, e.store, updates)

	pollID, _ := e.createPoll(t, ranked("Lunch", "Pizza", "Sushi"))
	testutil.AssertStatus(t, e.vote(pollID, "v1", []int{1, 2}), http.StatusCreated)
	testutil.AssertStatus(t, e.vote(pollID, "v1", []int{1, 2}), http.StatusConflict)

	msgs := updates.msgs[pollID]
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 broadcast, got %d", len(msgs))
	}
	tally, ok := msgs[0].(poll.Tally)
	if !ok {
		t.Fatalf("Expected a poll.Tally, got %T", msgs[0])
	}
	if tally.Ballots != 1 {
		t.Errorf("Expected tally with 1 ballot, got %d", tally.Ballots)
	}
}
