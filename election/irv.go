// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"fmt"
	"strings"
)

// DefaultMaxRounds is the round count after which an IRV/STV run is abandoned
const DefaultMaxRounds = 100

// IRV tabulates ranked ballots by instant runoff, or single transferable
// vote when more than one winner is requested
type IRV struct {
	// MaxRounds overrides DefaultMaxRounds when positive
	MaxRounds int
}

// Quota returns the Droop quota for the given ballot and seat counts
func Quota(ballots, seats int) int {
	return ballots/(seats+1) + 1
}

// Tabulate runs the election on a private copy of ballots
func (t IRV) Tabulate(candidates []string, ballots Matrix, winners int) (*Result, error) {
	if err := validateCandidates(candidates, winners); err != nil {
		return nil, err
	}
	if err := ballots.validate(len(candidates)); err != nil {
		return nil, err
	}

	maxRounds := t.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	m := ballots.Clone()
	normalizeRanks(m)

	total := m.Voters()
	quota := Quota(total, winners)
	res := newResult(MethodIRV, candidates, winners, total)
	tr := newTranscript(candidates)
	c := &irvCount{
		m:          m,
		res:        res,
		tr:         tr,
		total:      total,
		quota:      quota,
		winners:    winners,
		eliminated: make([]bool, len(candidates)),
		won:        make([]bool, len(candidates)),
	}

	for round := 1; ; round++ {
		if round > maxRounds {
			tr.add(fmt.Sprintf("CRITICAL FAILURE: NO RESULT AFTER %d ROUNDS\nTHIS ELECTION REQUIRES MANUAL REVIEW", maxRounds))
			res.Status = StatusNonConvergence
			break
		}
		if c.round(round) {
			break
		}
	}

	res.Transcript = tr.entries
	return res, nil
}

// TabulateIRV runs an IRV/STV election with the default safety bound
func TabulateIRV(candidates []string, ballots Matrix, winners int) (*Result, error) {
	return IRV{}.Tabulate(candidates, ballots, winners)
}

// irvCount is the working state of one IRV/STV run
type irvCount struct {
	m          Matrix
	res        *Result
	tr         *transcript
	total      int
	quota      int
	winners    int
	seats      int
	eliminated []bool
	won        []bool
}

// round tallies once and applies exactly one decision. It returns true when
// the election is over.
func (c *irvCount) round(number int) bool {
	tallies, exhausted := firstPreferences(c.m)
	rec := Round{Number: number, Tallies: tallies, Exhausted: exhausted, Eliminated: -1}

	var b strings.Builder
	fmt.Fprintf(&b, "### VOTE TALLIES FOR ROUND %d ###\n", number)
	for cand := range tallies {
		c.tr.line(&b, c.status(cand), cand, tallies[cand], "VOTES", c.total)
	}
	b.WriteString(ruleLine + "\n")

	done := false
	switch w, ok := c.quotaWinner(tallies); {
	case ok:
		done = c.elect(&b, &rec, w, tallies)
	case len(c.running()) <= c.winners-c.seats:
		c.fillRemaining(&b, &rec, tallies)
		done = true
	default:
		c.eliminate(&b, &rec, tallies)
	}

	c.res.Rounds = append(c.res.Rounds, rec)
	c.tr.add(strings.TrimRight(b.String(), "\n"))
	if done {
		c.tr.add(c.tr.finalEntry(c.tr.all(), c.won, tallies, "VOTES", c.total))
	}
	return done
}

func (c *irvCount) status(cand int) string {
	switch {
	case c.won[cand]:
		return statusWon
	case c.eliminated[cand]:
		return statusEliminated
	}
	return statusRunning
}

func (c *irvCount) running() []int {
	var out []int
	for cand := range c.won {
		if !c.won[cand] && !c.eliminated[cand] {
			out = append(out, cand)
		}
	}
	return out
}

// quotaWinner picks the strongest running candidate at or above quota
func (c *irvCount) quotaWinner(tallies []int) (int, bool) {
	best := -1
	var tied []int
	for _, cand := range c.running() {
		n := tallies[cand]
		if n < c.quota {
			continue
		}
		switch {
		case best < 0 || n > tallies[best]:
			best = cand
			tied = []int{cand}
		case n == tallies[best]:
			tied = append(tied, cand)
		}
	}
	if best < 0 {
		return -1, false
	}
	if len(tied) > 1 {
		w, resolved := breakTie(c.m, tied, favorMost)
		if !resolved {
			c.res.UnresolvedTie = true
		}
		return w, true
	}
	return best, true
}

// elect seats w and, in multi-winner races, moves the ballots beyond the
// quota to their next choice. Returns true once every seat is filled.
func (c *irvCount) elect(b *strings.Builder, rec *Round, w int, tallies []int) bool {
	c.won[w] = true
	c.seats++
	c.res.addWinner(w)
	rec.Elected = []int{w}

	name := c.res.Candidates[w]
	if c.winners == 1 {
		fmt.Fprintf(b, "RESULTS: %s HAS WON THE ELECTION WITH %.1f%% OF THE VOTE\n", name, percent(tallies[w], c.total))
		return true
	}
	fmt.Fprintf(b, "RESULTS: %s HAS WON A SEAT WITH %04d VOTES, MEETING THE QUOTA OF %d\n", name, tallies[w], c.quota)
	if c.seats == c.winners {
		b.WriteString("ALL SEATS HAVE BEEN FILLED\n")
		return true
	}

	holders := votersFor(c.m, w)
	if len(holders) > c.quota {
		surplus := holders[c.quota:]
		shift(c.m, surplus, c.eliminated, c.won)
		fmt.Fprintf(b, "%d SURPLUS VOTES WILL BE TRANSFERRED TO THEIR NEXT CHOICE\n", len(surplus))
	}
	b.WriteString("THE ELECTION WILL CONTINUE\n")
	return false
}

// fillRemaining seats every running candidate once they no longer outnumber
// the open seats
func (c *irvCount) fillRemaining(b *strings.Builder, rec *Round, tallies []int) {
	running := c.running()
	if len(running) == 0 {
		b.WriteString("RESULTS: NO CANDIDATES REMAIN FOR THE OPEN SEATS\n")
		return
	}
	outcome := "THE ELECTION"
	if c.winners > 1 {
		outcome = "A SEAT"
	}
	for _, cand := range running {
		c.won[cand] = true
		c.seats++
		c.res.addWinner(cand)
		rec.Elected = append(rec.Elected, cand)
		fmt.Fprintf(b, "RESULTS: %s HAS WON %s WITH %.1f%% OF VOTES\n", c.res.Candidates[cand], outcome, percent(tallies[cand], c.total))
	}
	if c.winners > 1 {
		b.WriteString("NO MORE CANDIDATES REMAIN THAN OPEN SEATS\n")
		return
	}
	b.WriteString("DUE TO THE ELIMINATION OF ALL OTHER CANDIDATES\n")
}

// eliminate drops the weakest running candidate and transfers their ballots
func (c *irvCount) eliminate(b *strings.Builder, rec *Round, tallies []int) {
	running := c.running()
	low := tallies[running[0]]
	for _, cand := range running[1:] {
		if tallies[cand] < low {
			low = tallies[cand]
		}
	}
	var tied []int
	for _, cand := range running {
		if tallies[cand] == low {
			tied = append(tied, cand)
		}
	}

	last, resolved := breakTie(c.m, tied, favorFewest)
	if len(tied) > 1 {
		if resolved {
			b.WriteString("A TIE FOR LAST PLACE WAS BROKEN BY LOWER-RANKED PREFERENCES\n")
		} else {
			c.res.UnresolvedTie = true
			b.WriteString("A TIE FOR LAST PLACE COULD NOT BE BROKEN; THE FIRST LISTED CANDIDATE IS ELIMINATED\n")
		}
	}

	c.eliminated[last] = true
	rec.Eliminated = last
	shift(c.m, votersFor(c.m, last), c.eliminated, c.won)

	fmt.Fprintf(b, "RESULTS: %s HAS BEEN ELIMINATED FROM THE RACE WITH %.1f%% OF VOTES\n", c.res.Candidates[last], percent(tallies[last], c.total))
	b.WriteString("THE ELECTION WILL CONTINUE\n")
}

// firstPreferences counts rank-1 entries per candidate and the ballots with
// no current first choice
func firstPreferences(m Matrix) (tallies []int, exhausted int) {
	tallies = make([]int, len(m))
	counted := 0
	for c := range m {
		for _, r := range m[c] {
			if r == 1 {
				tallies[c]++
				counted++
			}
		}
	}
	return tallies, m.Voters() - counted
}
