// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/quickly-tally/election"
)

const (
	// MaxCandidates is the most choices a poll may offer
	MaxCandidates = 9

	// DefaultTimeLimit applies when a poll is created without one
	DefaultTimeLimit = 24 * time.Hour
)

// Default descriptions shown when the creator leaves the field empty
const (
	rankedDescription = "This is a ranked-choice voting poll! Rank the options from your 1st " +
		"most preferred choice to your least preferred choice."
	scoreDescription = "This is a score voting poll! Give each option 0-5 stars. More stars " +
		"means more support, so give your favorites a 5 and your least favorites a 0."
)

// Options describes a poll to create
type Options struct {
	Name        string
	Description string
	Creator     string
	Method      election.Method
	Candidates  []string
	Winners     int
	TimeLimit   time.Duration
}

// Poll collects ballots for one election. The descriptive fields never change
// after creation; ballots and the closed flag are guarded by mu.
type Poll struct {
	ID          string
	Name        string
	Description string
	Creator     string
	Method      election.Method
	Candidates  []string
	Winners     int
	TimeLimit   time.Duration
	OpenedAt    time.Time

	mu      sync.RWMutex
	closed  bool
	frozen  bool
	ballots election.Matrix
	voters  []string
	voted   map[string]bool
}

// Snapshot is an immutable copy of a poll's state
type Snapshot struct {
	ID          string
	Name        string
	Description string
	Creator     string
	Method      election.Method
	Candidates  []string
	Winners     int
	TimeLimit   time.Duration
	OpenedAt    time.Time
	Closed      bool
	Ballots     election.Matrix
	Voters      []string
}

// New validates opts and returns an open poll with no ballots
func New(id string, opts Options, openedAt time.Time) (*Poll, error) {
	opts.Name = strings.TrimSpace(opts.Name)
	if opts.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidPoll)
	}
	if _, err := election.For(opts.Method); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPoll, err)
	}
	if len(opts.Candidates) == 0 || len(opts.Candidates) > MaxCandidates {
		return nil, fmt.Errorf("%w: between 1 and %d candidates required", ErrInvalidPoll, MaxCandidates)
	}
	seen := make(map[string]bool, len(opts.Candidates))
	for _, c := range opts.Candidates {
		label := strings.TrimSpace(c)
		if label == "" {
			return nil, fmt.Errorf("%w: candidate labels cannot be empty", ErrInvalidPoll)
		}
		if len([]rune(label)) > election.MaxLabelLength {
			return nil, fmt.Errorf("%w: candidate label longer than %d characters", ErrInvalidPoll, election.MaxLabelLength)
		}
		if seen[label] {
			return nil, fmt.Errorf("%w: duplicate candidate %q", ErrInvalidPoll, label)
		}
		seen[label] = true
	}
	if opts.Winners == 0 {
		opts.Winners = 1
	}
	if opts.Winners < 1 || opts.Winners > len(opts.Candidates) {
		return nil, fmt.Errorf("%w: winners must be between 1 and %d", ErrInvalidPoll, len(opts.Candidates))
	}
	if opts.TimeLimit < 0 {
		return nil, fmt.Errorf("%w: time limit cannot be negative", ErrInvalidPoll)
	}
	if opts.TimeLimit == 0 {
		opts.TimeLimit = DefaultTimeLimit
	}
	if strings.TrimSpace(opts.Description) == "" {
		opts.Description = defaultDescription(opts.Method)
	}

	candidates := make([]string, len(opts.Candidates))
	for i, c := range opts.Candidates {
		candidates[i] = strings.TrimSpace(c)
	}

	return &Poll{
		ID:          id,
		Name:        opts.Name,
		Description: opts.Description,
		Creator:     opts.Creator,
		Method:      opts.Method,
		Candidates:  candidates,
		Winners:     opts.Winners,
		TimeLimit:   opts.TimeLimit,
		OpenedAt:    openedAt,
		ballots:     election.NewMatrix(len(candidates)),
		voted:       map[string]bool{},
	}, nil
}

// FromSnapshot rebuilds a poll, ballots included, from a stored snapshot
func FromSnapshot(s Snapshot) (*Poll, error) {
	p, err := New(s.ID, Options{
		Name:        s.Name,
		Description: s.Description,
		Creator:     s.Creator,
		Method:      s.Method,
		Candidates:  s.Candidates,
		Winners:     s.Winners,
		TimeLimit:   s.TimeLimit,
	}, s.OpenedAt)
	if err != nil {
		return nil, err
	}
	if len(s.Voters) > 0 && len(s.Ballots) != len(p.Candidates) {
		return nil, fmt.Errorf("%w: ballots have %d rows for %d candidates", ErrInvalidPoll, len(s.Ballots), len(p.Candidates))
	}
	if len(s.Voters) != s.Ballots.Voters() {
		return nil, fmt.Errorf("%w: %d voters for %d ballots", ErrInvalidPoll, len(s.Voters), s.Ballots.Voters())
	}
	for v, voter := range s.Voters {
		p.ballots = p.ballots.AppendColumn(s.Ballots.Column(v))
		p.voters = append(p.voters, voter)
		p.voted[voter] = true
	}
	p.closed = s.Closed
	return p, nil
}

func defaultDescription(m election.Method) string {
	if m.Ranked() {
		return rankedDescription
	}
	return scoreDescription
}

// ClosesAt is when the poll stops accepting ballots
func (p *Poll) ClosesAt() time.Time {
	return p.OpenedAt.Add(p.TimeLimit)
}

// Expired reports whether the time limit has passed at now
func (p *Poll) Expired(now time.Time) bool {
	return now.Sub(p.OpenedAt) > p.TimeLimit
}

// Remaining returns the time left before the poll closes, never negative
func (p *Poll) Remaining(now time.Time) time.Duration {
	left := p.ClosesAt().Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Closed reports whether the poll has stopped accepting ballots
func (p *Poll) Closed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// BallotCount returns the number of accepted ballots
func (p *Poll) BallotCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.voters)
}

// Submit records one voter's ballot
func (p *Poll) Submit(voterID string, ballot []int) error {
	_, err := p.submitAt(voterID, ballot, time.Now())
	return err
}

// Accept is Submit that also returns the ballot's column in the matrix,
// which the audit record uses to keep ballots in submission order
func (p *Poll) Accept(voterID string, ballot []int) (int, error) {
	return p.submitAt(voterID, ballot, time.Now())
}

func (p *Poll) submitAt(voterID string, ballot []int, now time.Time) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return -1, ErrPollClosed
	}
	if p.Expired(now) {
		p.closed = true
		return -1, ErrPollClosed
	}
	if p.voted[voterID] {
		return -1, ErrDuplicateVoter
	}
	if err := p.validate(voterID, ballot); err != nil {
		return -1, err
	}

	p.ballots = p.ballots.AppendColumn(ballot)
	p.voters = append(p.voters, voterID)
	p.voted[voterID] = true
	return len(p.voters) - 1, nil
}

func (p *Poll) validate(voterID string, ballot []int) error {
	if voterID == "" {
		return fmt.Errorf("%w: voter ID is required", ErrInvalidBallot)
	}
	if len(ballot) != len(p.Candidates) {
		return fmt.Errorf("%w: got %d entries for %d candidates", ErrInvalidBallot, len(ballot), len(p.Candidates))
	}
	limit := p.Method.MaxValue(len(p.Candidates))
	for i, v := range ballot {
		if v < 0 || v > limit {
			return fmt.Errorf("%w: entry for %q must be between 0 and %d", ErrInvalidBallot, p.Candidates[i], limit)
		}
	}
	return nil
}

// Snapshot returns a deep copy of the poll
func (p *Poll) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot()
}

func (p *Poll) snapshot() Snapshot {
	return Snapshot{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Creator:     p.Creator,
		Method:      p.Method,
		Candidates:  append([]string(nil), p.Candidates...),
		Winners:     p.Winners,
		TimeLimit:   p.TimeLimit,
		OpenedAt:    p.OpenedAt,
		Closed:      p.closed,
		Ballots:     p.ballots.Clone(),
		Voters:      append([]string(nil), p.voters...),
	}
}

// Freeze closes the poll and returns the ballots to tabulate. Only the first
// caller gets ok == true, so a poll is tabulated at most once.
func (p *Poll) Freeze() (Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.frozen {
		return Snapshot{}, false
	}
	p.frozen = true
	p.closed = true
	return p.snapshot(), true
}

// unfreeze lets a later Freeze retry a close that could not be recorded.
// The poll stays closed to new ballots.
func (p *Poll) unfreeze() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frozen = false
}
