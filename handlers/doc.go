// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quickly Tally API.

# Handler Types

Each handler is a struct holding the pieces it needs:

  - PollHandler: Create, list, inspect, tally and close polls
  - VotingHandler: Ballot submission
  - ResultsHandler: Sealed results of closed polls
  - LiveHandler: Websocket feed of tallies and result transcripts

Open polls live in a poll.Registry; the db.Store keeps the audit record and
final results:

	pollHandler := handlers.NewPollHandler(registry, store, closer, cfg)
	votingHandler := handlers.NewVotingHandler(registry, store, hub)

# Poll Lifecycle

Polls are open from creation until their time limit passes or an admin
closes them. Closing tabulates the ballots exactly once.

	POST /polls              → CreatePoll (returns admin_key)
	GET  /polls              → ListPolls (open polls, ?name= filter)
	GET  /polls/{id}         → GetPoll
	GET  /polls/{id}/tally   → GetTally (open polls only)
	POST /polls/{id}/close   → ClosePoll (returns the result)

Closing requires the X-Admin-Key header.

# Voting

	POST /polls/{id}/ballots → SubmitBallot

The voter is named by the X-Voter-ID header. The body holds one entry per
candidate: a rank (1 = first choice, 0 = unranked) for ranked polls, or a
0 to 5 star score for STAR polls. One ballot per voter; it cannot be changed.

# Results

	GET /polls/{id}/results → GetResults (403 while the poll is open)
	GET /polls/{id}/live    → Stream (websocket)

# Status Codes

Poll errors map onto statuses in one place:

  - poll.ErrPollNotFound → 404
  - poll.ErrDuplicateVoter, ErrPollClosed, ErrAlreadyClosed, ErrDuplicateName → 409
  - poll.ErrInvalidBallot, ErrInvalidPoll → 400
*/
package handlers
