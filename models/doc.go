// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreatePollRequest: name, description, creator, method, candidates, winners, time_limit_hours
  - SubmitBallotRequest: ballot ([]int, one entry per candidate)

# Response Types

Types for JSON responses:

  - CreatePollResponse: poll_id, admin_key, closes_at
  - SubmitBallotResponse: ballot_id, message
  - ClosePollResponse: closed_at, snapshot_id, result
  - ErrorResponse: error, message

# Domain Types

  - Poll: poll metadata and lifecycle state, open or closed
  - ResultSnapshot: immutable tabulation record with its inputs hash

Live tallies use poll.Tally and results embed election.Result directly, so
their JSON matches the engine's types field for field.

# Constants

Status values:

	StatusOpen   = "open"
	StatusClosed = "closed"
*/
package models
