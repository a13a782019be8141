// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package poll collects ballots for open elections and closes them.

# Polls

A Poll is created from Options and accepts one ballot per voter ID until it
is closed or its time limit passes:

	p, err := registry.Create(poll.Options{
		Name:       "Lunch",
		Method:     election.MethodIRV,
		Candidates: []string{"Tacos", "Pho", "Pizza"},
		Winners:    1,
		TimeLimit:  2 * time.Hour,
	})

	err = p.Submit(voterID, []int{1, 3, 2})

Submit returns one of:

  - ErrPollClosed: the poll is closed or past its time limit
  - ErrDuplicateVoter: this voter ID already has a ballot
  - ErrInvalidBallot: wrong length, or an entry outside 0..C (ranked) or 0..5 (STAR)

Ranked ballots store the rank given to each candidate (0 = unranked). STAR
ballots store 0 to 5 stars per candidate.

# Registry

Registry is the set of open polls, keyed by ID with names unique among open
polls. It is injected into the HTTP handlers; there is no package-level
registry. Restore registers polls rebuilt from the database at start-up.

# Closing

Closer.Close freezes a poll, tabulates the frozen ballots exactly once,
stores the result through a ResultStore, and hands the transcript to an
Announcer in the background. A second close of the same poll returns
ErrAlreadyClosed. When the result cannot be stored the poll stays registered
and closed to ballots; the next Close, or the next Watcher tick, tries again.

Watcher runs a ticker (60 seconds by default). Each tick broadcasts the live
Tally of every open poll and closes the polls whose time limit has passed.
*/
package poll
