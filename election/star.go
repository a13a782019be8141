// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"fmt"
	"sort"
	"strings"
)

// STAR tabulates score ballots: score then automatic runoff for one winner,
// sequential allocation with ballot removal for several
type STAR struct{}

// Tabulate runs the election on a private copy of ballots
func (STAR) Tabulate(candidates []string, ballots Matrix, winners int) (*Result, error) {
	if err := validateCandidates(candidates, winners); err != nil {
		return nil, err
	}
	if err := ballots.validate(len(candidates)); err != nil {
		return nil, err
	}
	for c, row := range ballots {
		for v, s := range row {
			if s < 0 || s > MaxScore {
				return nil, fmt.Errorf("%w: voter %d gave candidate %d a score of %d", ErrInvalidInput, v, c, s)
			}
		}
	}

	m := ballots.Clone()
	res := newResult(MethodSTAR, candidates, winners, m.Voters())
	tr := newTranscript(candidates)
	if winners == 1 {
		starSingle(m, res, tr)
	} else {
		starMulti(m, res, tr, winners)
	}
	res.Transcript = tr.entries
	return res, nil
}

// TabulateSTAR runs a STAR election
func TabulateSTAR(candidates []string, ballots Matrix, winners int) (*Result, error) {
	return STAR{}.Tabulate(candidates, ballots, winners)
}

func starSingle(m Matrix, res *Result, tr *transcript) {
	n := len(m)
	sums := rowSums(m)
	stars := sum(sums)

	// highest total first, lower index first among equal totals
	order := make([]int, n)
	for c := range order {
		order[c] = c
	}
	sort.SliceStable(order, func(i, j int) bool {
		return sums[order[i]] > sums[order[j]]
	})

	if n == 1 {
		var b strings.Builder
		b.WriteString("### STAR TALLIES FOR ROUND 1 ###\n")
		tr.line(&b, statusWon, 0, sums[0], "STARS", stars)
		b.WriteString(ruleLine + "\n")
		fmt.Fprintf(&b, "RESULTS: %s IS THE ONLY CANDIDATE AND WINS WITHOUT A RUNOFF", res.Candidates[0])
		tr.add(b.String())
		res.Rounds = append(res.Rounds, Round{Number: 1, Tallies: sums, Eliminated: -1, Elected: []int{0}})
		res.addWinner(0)
		tr.add(tr.finalEntry([]int{0}, []bool{true}, nil, "", 0))
		return
	}

	first, second := order[0], order[1]
	finalist := make([]bool, n)
	finalist[first], finalist[second] = true, true

	var b strings.Builder
	b.WriteString("### STAR TALLIES FOR ROUND 1 ###\n")
	for c := range m {
		status := statusEliminated
		if finalist[c] {
			status = statusFinalist
		}
		tr.line(&b, status, c, sums[c], "STARS", stars)
	}
	b.WriteString(ruleLine + "\n")
	if n > 2 && sums[order[2]] == sums[second] {
		res.UnresolvedTie = true
		b.WriteString("A TIE FOR SECOND PLACE WAS DECIDED BY CANDIDATE ORDER\n")
	}
	fmt.Fprintf(&b, "RESULTS: %s AND %s HAVE PASSED ROUND ONE\n", res.Candidates[first], res.Candidates[second])
	b.WriteString("THEY WILL NOW FACE OFF IN A HEAD-TO-HEAD MATCH")
	tr.add(b.String())
	res.Rounds = append(res.Rounds, Round{Number: 1, Tallies: sums, Eliminated: -1, Finalists: []int{first, second}})

	// one virtual vote per voter for whichever finalist they scored higher
	votes := make([]int, n)
	for v := 0; v < m.Voters(); v++ {
		switch {
		case m[first][v] > m[second][v]:
			votes[first]++
		case m[first][v] < m[second][v]:
			votes[second]++
		}
	}

	winner := first
	var tieNote string
	switch {
	case votes[second] > votes[first]:
		winner = second
	case votes[second] == votes[first]:
		// first already leads on stars, or matches them at a lower index
		if sums[first] > sums[second] {
			tieNote = fmt.Sprintf("THE HEAD-TO-HEAD MATCH IS TIED; %s WINS ON TOTAL STARS\n", res.Candidates[first])
		} else {
			res.UnresolvedTie = true
			tieNote = fmt.Sprintf("THE HEAD-TO-HEAD MATCH AND TOTAL STARS ARE TIED; %s WINS AS THE FIRST LISTED FINALIST\n", res.Candidates[first])
		}
	}

	res.addWinner(winner)
	res.Rounds = append(res.Rounds, Round{Number: 2, Tallies: votes, Eliminated: -1, Finalists: []int{first, second}, Elected: []int{winner}})

	won := make([]bool, n)
	won[winner] = true
	rows := []int{first, second}
	sort.Ints(rows)
	tr.add(tieNote + tr.finalEntry(rows, won, votes, "VOTES", votes[first]+votes[second]))
}

func starMulti(m Matrix, res *Result, tr *transcript, winners int) {
	won := make([]bool, len(m))
	for round := 1; len(res.WinnerIndices) < winners; round++ {
		sums := rowSums(m)
		stars := sum(sums)

		best := -1
		tied := false
		for c := range m {
			if won[c] {
				continue
			}
			switch {
			case best < 0 || sums[c] > sums[best]:
				best = c
				tied = false
			case sums[c] == sums[best]:
				tied = true
			}
		}
		won[best] = true
		res.addWinner(best)
		rec := Round{Number: round, Tallies: sums, Eliminated: -1, Elected: []int{best}}

		var b strings.Builder
		fmt.Fprintf(&b, "### STAR TALLIES FOR ROUND %d ###\n", round)
		for c := range m {
			status := statusRunning
			if won[c] {
				status = statusWon
			}
			tr.line(&b, status, c, sums[c], "STARS", stars)
		}
		b.WriteString(ruleLine + "\n")
		if tied {
			res.UnresolvedTie = true
			b.WriteString("A TIE FOR THE TOP SCORE WAS DECIDED BY CANDIDATE ORDER\n")
		}
		fmt.Fprintf(&b, "RESULTS: %s HAS WON A SEAT WITH %04d STARS", res.Candidates[best], sums[best])

		if len(res.WinnerIndices) < winners {
			maxed := maxedVoters(m, best)
			removed := maxed[:len(maxed)/winners]
			for _, v := range removed {
				for c := range m {
					m[c][v] = 0
				}
			}
			rec.Removed = removed
			fmt.Fprintf(&b, "\n%d OF THEIR %d TOP-SCORE VOTES WILL BE CONSIDERED \"COUNTED\" AND REMOVED FOR THE NEXT ROUND", len(removed), len(maxed))
		}

		res.Rounds = append(res.Rounds, rec)
		tr.add(b.String())
	}

	tr.add(tr.finalEntry(tr.all(), won, nil, "", 0))
}

// maxedVoters lists, in column order, voters whose score for c equals the
// highest score on their ballot. Blank and already counted ballots qualify.
func maxedVoters(m Matrix, c int) []int {
	var out []int
	for v := 0; v < m.Voters(); v++ {
		top := m[0][v]
		for cand := 1; cand < len(m); cand++ {
			if m[cand][v] > top {
				top = m[cand][v]
			}
		}
		if m[c][v] == top {
			out = append(out, v)
		}
	}
	return out
}

func rowSums(m Matrix) []int {
	sums := make([]int, len(m))
	for c, row := range m {
		for _, s := range row {
			sums[c] += s
		}
	}
	return sums
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
