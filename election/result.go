// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxLabelLength bounds candidate labels so transcript columns stay readable
const MaxLabelLength = 100

// Status constants
const (
	StatusComplete       = "complete"
	StatusNonConvergence = "non_convergence"
)

// Round records one counting round
type Round struct {
	Number     int   `json:"number"`
	Tallies    []int `json:"tallies"`
	Exhausted  int   `json:"exhausted,omitempty"`
	Elected    []int `json:"elected,omitempty"`
	Eliminated int   `json:"eliminated"` // -1 if nobody was eliminated
	Removed    []int `json:"removed,omitempty"`
	Finalists  []int `json:"finalists,omitempty"`
}

// Result is the outcome of one tabulation run
type Result struct {
	Method        Method   `json:"method"`
	Candidates    []string `json:"candidates"`
	Seats         int      `json:"seats"`
	Ballots       int      `json:"ballots"`
	Winners       []string `json:"winners"`
	WinnerIndices []int    `json:"winner_indices"`
	Rounds        []Round  `json:"rounds"`
	Transcript    []string `json:"transcript"`
	Status        string   `json:"status"`

	// UnresolvedTie is set when a lowest-index fallback decided a tie
	UnresolvedTie bool `json:"unresolved_tie"`
}

// Err returns ErrNonConvergence when the run hit the safety stop.
// Such a result is partial and must not be treated as authoritative.
func (r *Result) Err() error {
	if r.Status == StatusNonConvergence {
		return ErrNonConvergence
	}
	return nil
}

// Text joins the transcript into a single block
func (r *Result) Text() string {
	return strings.Join(r.Transcript, "\n")
}

func newResult(method Method, candidates []string, seats, ballots int) *Result {
	return &Result{
		Method:        method,
		Candidates:    append([]string(nil), candidates...),
		Seats:         seats,
		Ballots:       ballots,
		Winners:       []string{},
		WinnerIndices: []int{},
		Status:        StatusComplete,
	}
}

func (r *Result) addWinner(c int) {
	r.WinnerIndices = append(r.WinnerIndices, c)
	r.Winners = append(r.Winners, r.Candidates[c])
}

// validateCandidates rejects lists that cannot be tabulated or printed
func validateCandidates(candidates []string, winners int) error {
	if len(candidates) == 0 {
		return fmt.Errorf("%w: no candidates", ErrInvalidInput)
	}
	for i, label := range candidates {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("%w: candidate %d has an empty label", ErrInvalidInput, i)
		}
		if utf8.RuneCountInString(label) > MaxLabelLength {
			return fmt.Errorf("%w: candidate %d label exceeds %d characters", ErrInvalidInput, i, MaxLabelLength)
		}
	}
	if winners < 1 || winners > len(candidates) {
		return fmt.Errorf("%w: %d winners requested for %d candidates", ErrInvalidInput, winners, len(candidates))
	}
	return nil
}
