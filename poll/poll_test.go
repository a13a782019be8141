// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-tally/election"
)

func newTestPoll(t *testing.T, method election.Method, candidates ...string) *Poll {
	t.Helper()
	p, err := New("p1", Options{
		Name:       "Lunch",
		Creator:    "alice",
		Method:     method,
		Candidates: candidates,
		TimeLimit:  time.Hour,
	}, time.Now())
	require.NoError(t, err)
	return p
}

func TestNewValidation(t *testing.T) {
	valid := func() Options {
		return Options{Name: "Lunch", Method: election.MethodIRV, Candidates: []string{"A", "B"}}
	}

	tests := []struct {
		name   string
		modify func(o *Options)
	}{
		{"empty name", func(o *Options) { o.Name = "  " }},
		{"unknown method", func(o *Options) { o.Method = "borda" }},
		{"no candidates", func(o *Options) { o.Candidates = nil }},
		{"too many candidates", func(o *Options) {
			o.Candidates = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}
		}},
		{"blank candidate", func(o *Options) { o.Candidates = []string{"A", ""} }},
		{"long candidate", func(o *Options) { o.Candidates = []string{"A", strings.Repeat("b", 101)} }},
		{"duplicate candidate", func(o *Options) { o.Candidates = []string{"A", " A "} }},
		{"too many winners", func(o *Options) { o.Winners = 3 }},
		{"negative winners", func(o *Options) { o.Winners = -1 }},
		{"negative time limit", func(o *Options) { o.TimeLimit = -time.Minute }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid()
			tt.modify(&opts)
			p, err := New("id", opts, time.Now())
			assert.ErrorIs(t, err, ErrInvalidPoll)
			assert.Nil(t, p)
		})
	}
}

func TestNewDefaults(t *testing.T) {
	p, err := New("id", Options{
		Name:       " Lunch ",
		Method:     election.MethodSTAR,
		Candidates: []string{" Tacos", "Pho "},
	}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "Lunch", p.Name)
	assert.Equal(t, []string{"Tacos", "Pho"}, p.Candidates)
	assert.Equal(t, 1, p.Winners)
	assert.Equal(t, DefaultTimeLimit, p.TimeLimit)
	assert.Contains(t, p.Description, "0-5 stars")
	assert.False(t, p.Closed())
}

func TestSubmit(t *testing.T) {
	p := newTestPoll(t, election.MethodIRV, "A", "B", "C")

	require.NoError(t, p.Submit("v1", []int{1, 2, 3}))
	require.NoError(t, p.Submit("v2", []int{0, 1, 0}))

	tests := []struct {
		name    string
		voter   string
		ballot  []int
		wantErr error
	}{
		{"duplicate voter", "v1", []int{3, 2, 1}, ErrDuplicateVoter},
		{"missing voter", "", []int{1, 2, 3}, ErrInvalidBallot},
		{"short ballot", "v3", []int{1, 2}, ErrInvalidBallot},
		{"rank above candidate count", "v3", []int{1, 2, 4}, ErrInvalidBallot},
		{"negative rank", "v3", []int{-1, 1, 2}, ErrInvalidBallot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, p.Submit(tt.voter, tt.ballot), tt.wantErr)
		})
	}

	assert.Equal(t, 2, p.BallotCount())
	snap := p.Snapshot()
	assert.Equal(t, []string{"v1", "v2"}, snap.Voters)
	assert.Equal(t, []int{1, 2, 3}, snap.Ballots.Column(0))
	assert.Equal(t, []int{0, 1, 0}, snap.Ballots.Column(1))
}

func TestAcceptReturnsColumn(t *testing.T) {
	p := newTestPoll(t, election.MethodIRV, "A", "B")

	pos, err := p.Accept("v1", []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 0, pos)

	pos, err = p.Accept("v2", []int{2, 1})
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	pos, err = p.Accept("v2", []int{2, 1})
	assert.ErrorIs(t, err, ErrDuplicateVoter)
	assert.Equal(t, -1, pos)
}

func TestSubmitScoreBounds(t *testing.T) {
	p := newTestPoll(t, election.MethodSTAR, "A", "B")

	assert.NoError(t, p.Submit("v1", []int{5, 0}))
	assert.ErrorIs(t, p.Submit("v2", []int{6, 0}), ErrInvalidBallot)
}

func TestSubmitAfterTimeLimit(t *testing.T) {
	p := newTestPoll(t, election.MethodIRV, "A", "B")
	late := p.OpenedAt.Add(p.TimeLimit + time.Second)

	_, err := p.submitAt("v1", []int{1, 2}, late)
	assert.ErrorIs(t, err, ErrPollClosed)
	assert.True(t, p.Closed())

	// closed stays closed even with an earlier clock
	_, err = p.submitAt("v1", []int{1, 2}, p.OpenedAt)
	assert.ErrorIs(t, err, ErrPollClosed)
	assert.Zero(t, p.BallotCount())
}

func TestFreezeOnce(t *testing.T) {
	p := newTestPoll(t, election.MethodIRV, "A", "B")
	require.NoError(t, p.Submit("v1", []int{1, 2}))

	snap, ok := p.Freeze()
	require.True(t, ok)
	assert.True(t, snap.Closed)
	assert.Equal(t, 1, snap.Ballots.Voters())

	_, ok = p.Freeze()
	assert.False(t, ok)
	assert.ErrorIs(t, p.Submit("v2", []int{2, 1}), ErrPollClosed)
}

func TestSnapshotIsACopy(t *testing.T) {
	p := newTestPoll(t, election.MethodIRV, "A", "B")
	require.NoError(t, p.Submit("v1", []int{1, 2}))

	snap := p.Snapshot()
	snap.Ballots[0][0] = 9
	snap.Voters[0] = "mallory"
	snap.Candidates[0] = "Z"

	again := p.Snapshot()
	assert.Equal(t, 1, again.Ballots[0][0])
	assert.Equal(t, "v1", again.Voters[0])
	assert.Equal(t, "A", again.Candidates[0])
}

func TestRemaining(t *testing.T) {
	p := newTestPoll(t, election.MethodIRV, "A", "B")

	assert.Equal(t, time.Hour, p.Remaining(p.OpenedAt))
	assert.Equal(t, 15*time.Minute, p.Remaining(p.OpenedAt.Add(45*time.Minute)))
	assert.Zero(t, p.Remaining(p.OpenedAt.Add(2*time.Hour)))
	assert.False(t, p.Expired(p.OpenedAt.Add(time.Hour)))
	assert.True(t, p.Expired(p.OpenedAt.Add(time.Hour+time.Nanosecond)))
}

func TestFromSnapshot(t *testing.T) {
	p := newTestPoll(t, election.MethodIRV, "A", "B")
	require.NoError(t, p.Submit("v1", []int{1, 2}))
	require.NoError(t, p.Submit("v2", []int{2, 1}))

	restored, err := FromSnapshot(p.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, p.ID, restored.ID)
	assert.Equal(t, p.OpenedAt, restored.OpenedAt)
	assert.Equal(t, 2, restored.BallotCount())
	assert.ErrorIs(t, restored.Submit("v1", []int{1, 2}), ErrDuplicateVoter)
	assert.NoError(t, restored.Submit("v3", []int{1, 2}))
}

func TestFromSnapshotRejectsMismatchedVoters(t *testing.T) {
	snap := newTestPoll(t, election.MethodIRV, "A", "B").Snapshot()
	snap.Voters = []string{"ghost"}

	_, err := FromSnapshot(snap)
	assert.ErrorIs(t, err, ErrInvalidPoll)
}

func TestTallyRanked(t *testing.T) {
	p := newTestPoll(t, election.MethodIRV, "A", "B", "C")
	require.NoError(t, p.Submit("v1", []int{1, 2, 0}))
	require.NoError(t, p.Submit("v2", []int{2, 1, 0}))
	require.NoError(t, p.Submit("v3", []int{1, 3, 2}))

	tally := p.Tally(p.OpenedAt)

	assert.Equal(t, 3, tally.Ballots)
	assert.Equal(t, []string{"1st-choice votes", "2nd-choice votes", "3rd-choice votes"}, tally.Levels)
	assert.Equal(t, CandidateTally{Name: "A", Counts: []int{2, 1, 0}}, tally.Candidates[0])
	assert.Equal(t, CandidateTally{Name: "B", Counts: []int{1, 1, 1}}, tally.Candidates[1])
	assert.Equal(t, CandidateTally{Name: "C", Counts: []int{0, 1, 0}}, tally.Candidates[2])
	assert.Equal(t, "1 hour from now", tally.ClosesIn)
}

func TestTallyScore(t *testing.T) {
	p := newTestPoll(t, election.MethodSTAR, "A", "B")
	require.NoError(t, p.Submit("v1", []int{5, 0}))
	require.NoError(t, p.Submit("v2", []int{5, 3}))

	tally := p.Tally(p.OpenedAt.Add(2 * time.Hour))

	assert.Equal(t, []string{
		"5 star votes", "4 star votes", "3 star votes", "2 star votes", "1 star votes", "0 star votes",
	}, tally.Levels)
	assert.Equal(t, []int{2, 0, 0, 0, 0, 0}, tally.Candidates[0].Counts)
	assert.Equal(t, []int{0, 0, 1, 0, 0, 1}, tally.Candidates[1].Counts)
	assert.Equal(t, "closed", tally.ClosesIn)
}

func TestConcurrentSubmit(t *testing.T) {
	p := newTestPoll(t, election.MethodIRV, "A", "B")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, p.Submit(fmt.Sprintf("voter-%d", i), []int{1, 2}))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, p.BallotCount())

	var accepted int
	var mu sync.Mutex
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p.Submit("same-voter", []int{2, 1}) == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 51, p.BallotCount())
}
