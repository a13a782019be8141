// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-tally/election"
)

// Tally is the live view of a poll while it is open: per candidate, how many
// ballots put it at each rank (ranked polls) or gave it each star value
// from 5 down to 0 (STAR polls)
type Tally struct {
	PollID     string           `json:"poll_id"`
	Method     election.Method  `json:"method"`
	Ballots    int              `json:"ballots"`
	Levels     []string         `json:"levels"`
	Candidates []CandidateTally `json:"candidates"`
	ClosesIn   string           `json:"closes_in"`
}

// CandidateTally holds one candidate's counts, aligned with Tally.Levels
type CandidateTally struct {
	Name   string `json:"name"`
	Counts []int  `json:"counts"`
}

// Tally counts the current ballots
func (p *Poll) Tally(now time.Time) Tally {
	p.mu.RLock()
	defer p.mu.RUnlock()

	values := levelValues(p.Method, len(p.Candidates))
	t := Tally{
		PollID:     p.ID,
		Method:     p.Method,
		Ballots:    len(p.voters),
		Levels:     make([]string, len(values)),
		Candidates: make([]CandidateTally, len(p.Candidates)),
		ClosesIn:   closesIn(p, now),
	}
	for i, v := range values {
		t.Levels[i] = levelLabel(p.Method, v)
	}
	for c, name := range p.Candidates {
		counts := make([]int, len(values))
		for i, v := range values {
			for _, entry := range p.ballots[c] {
				if entry == v {
					counts[i]++
				}
			}
		}
		t.Candidates[c] = CandidateTally{Name: name, Counts: counts}
	}
	return t
}

// levelValues lists the ballot values shown in a tally, in display order
func levelValues(m election.Method, candidates int) []int {
	if m.Ranked() {
		values := make([]int, candidates)
		for i := range values {
			values[i] = i + 1
		}
		return values
	}
	values := make([]int, 0, election.MaxScore+1)
	for s := election.MaxScore; s >= 0; s-- {
		values = append(values, s)
	}
	return values
}

func levelLabel(m election.Method, v int) string {
	if m.Ranked() {
		return humanize.Ordinal(v) + "-choice votes"
	}
	return fmt.Sprintf("%d star votes", v)
}

// closesIn renders the closing time relative to now, e.g. "23 hours from now"
func closesIn(p *Poll, now time.Time) string {
	if p.closed || p.Expired(now) {
		return "closed"
	}
	return humanize.RelTime(p.ClosesAt(), now, "ago", "from now")
}
