// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election implements the tabulation engine for ranked-choice
(IRV/STV) and STAR elections.

# Ballot Matrix

Ballots are held in a Matrix with one row per candidate and one column per
voter:

	ballots := election.Matrix{
		{1, 1, 2}, // Alice
		{2, 2, 1}, // Bob
	}

For ranked polls an entry is the rank the voter gave the candidate (1 = first
choice, 0 or less = unranked). For STAR polls an entry is a score from 0 to 5.

# Tabulation

Both methods sit behind the Tabulator interface:

	result, err := election.Tabulate(election.MethodIRV, candidates, ballots, 1)
	if err != nil {
		// ErrInvalidInput: nothing was tabulated
	}
	if err := result.Err(); err != nil {
		// ErrNonConvergence: partial transcript, needs manual review
	}

Tabulators clone the matrix before working on it; caller data is never
modified.

# IRV/STV

Each round tallies first preferences against the Droop quota
floor(V/(W+1))+1. A candidate reaching the quota wins a seat and, in
multi-winner races, the ballots beyond the quota move to their next
preference. Otherwise the weakest candidate is eliminated and their ballots
transfer. Ties are broken by looking at successively lower preference ranks.

# STAR

Single-winner STAR picks the two highest score totals and runs them
head-to-head. Multi-winner STAR picks the highest total each round and zeroes
a share of the ballots that gave the winner their top score.

# Transcript

Every Result carries a transcript: one string per announcement, in order,
suitable for posting one message at a time.
*/
package election
