// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"fmt"
	"sort"
)

// MaxScore is the highest star rating on a STAR ballot
const MaxScore = 5

// Matrix holds ballots with one row per candidate and one column per voter
type Matrix [][]int

// NewMatrix returns an empty matrix for the given number of candidates
func NewMatrix(candidates int) Matrix {
	m := make(Matrix, candidates)
	for c := range m {
		m[c] = []int{}
	}
	return m
}

// Voters returns the number of ballot columns
func (m Matrix) Voters() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Clone returns a deep copy
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for c, row := range m {
		out[c] = append([]int(nil), row...)
	}
	return out
}

// Column returns a copy of voter v's ballot
func (m Matrix) Column(v int) []int {
	col := make([]int, len(m))
	for c := range m {
		col[c] = m[c][v]
	}
	return col
}

// AppendColumn adds one voter's ballot. The ballot must have one entry per row.
func (m Matrix) AppendColumn(ballot []int) Matrix {
	for c := range m {
		m[c] = append(m[c], ballot[c])
	}
	return m
}

// top returns the candidate holding rank 1 on voter v's ballot, or -1
func (m Matrix) top(v int) int {
	for c := range m {
		if m[c][v] == 1 {
			return c
		}
	}
	return -1
}

// hasPreference reports whether any positive rank remains on voter v's ballot
func (m Matrix) hasPreference(v int) bool {
	for c := range m {
		if m[c][v] > 0 {
			return true
		}
	}
	return false
}

// validate checks the matrix shape against the candidate list
func (m Matrix) validate(candidates int) error {
	if len(m) != candidates {
		return fmt.Errorf("%w: ballot matrix has %d rows for %d candidates", ErrInvalidInput, len(m), candidates)
	}
	voters := m.Voters()
	for c, row := range m {
		if len(row) != voters {
			return fmt.Errorf("%w: ballot row %d has %d entries, want %d", ErrInvalidInput, c, len(row), voters)
		}
	}
	return nil
}

// normalizeRanks rewrites every column so its positive entries are exactly
// 1..k in the voter's order of preference. Equal ranks are ordered by
// candidate index and anything non-positive becomes 0.
func normalizeRanks(m Matrix) {
	type pref struct {
		cand int
		rank int
	}
	prefs := make([]pref, 0, len(m))
	for v := 0; v < m.Voters(); v++ {
		prefs = prefs[:0]
		for c := range m {
			if m[c][v] > 0 {
				prefs = append(prefs, pref{cand: c, rank: m[c][v]})
			}
			m[c][v] = 0
		}
		sort.SliceStable(prefs, func(i, j int) bool {
			return prefs[i].rank < prefs[j].rank
		})
		for i, p := range prefs {
			m[p.cand][v] = i + 1
		}
	}
}
