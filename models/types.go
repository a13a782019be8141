// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"time"

	"github.com/danielhkuo/quickly-tally/election"
)

// Poll status constants
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Request types

type CreatePollRequest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Creator        string   `json:"creator"`
	Method         string   `json:"method"`
	Candidates     []string `json:"candidates"`
	Winners        int      `json:"winners"`
	TimeLimitHours float64  `json:"time_limit_hours"`
}

// ballot[i] is the rank (ranked polls) or star score (STAR polls) for candidate i
type SubmitBallotRequest struct {
	Ballot []int `json:"ballot"`
}

// Response types

type CreatePollResponse struct {
	PollID   string    `json:"poll_id"`
	AdminKey string    `json:"admin_key"`
	ClosesAt time.Time `json:"closes_at"`
}

type SubmitBallotResponse struct {
	BallotID string `json:"ballot_id"`
	Message  string `json:"message"`
}

type ClosePollResponse struct {
	ClosedAt   time.Time        `json:"closed_at"`
	SnapshotID string           `json:"snapshot_id"`
	Result     *election.Result `json:"result"`
}

// Domain types

type Poll struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Creator         string     `json:"creator"`
	Method          string     `json:"method"`
	Candidates      []string   `json:"candidates"`
	Winners         int        `json:"winners"`
	Status          string     `json:"status"`
	OpenedAt        time.Time  `json:"opened_at"`
	ClosesAt        time.Time  `json:"closes_at"`
	ClosesIn        string     `json:"closes_in,omitempty"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	FinalSnapshotID *string    `json:"final_snapshot_id,omitempty"`
	BallotCount     int        `json:"ballot_count"`
}

type ResultSnapshot struct {
	ID         string           `json:"id"`
	PollID     string           `json:"poll_id"`
	Method     string           `json:"method"`
	Status     string           `json:"status"`
	ComputedAt time.Time        `json:"computed_at"`
	InputsHash string           `json:"inputs_hash"` // Hash of voter IDs and ballots for verification
	Result     *election.Result `json:"result"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
