// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

// shift moves each listed voter's ballot to their next eligible preference.
//
// Every entry in the voter's column is decremented, which turns the consumed
// rank into 0 and promotes rank 2 to rank 1. Decrementing repeats while the
// new first choice is eliminated or has already won, or while positive ranks
// remain but none of them is 1. The loop ends on a running candidate or an
// exhausted ballot.
func shift(m Matrix, voters []int, eliminated, won []bool) {
	for _, v := range voters {
		step(m, v)
		for m.hasPreference(v) {
			top := m.top(v)
			if top >= 0 && !eliminated[top] && !won[top] {
				break
			}
			step(m, v)
		}
	}
}

func step(m Matrix, v int) {
	for c := range m {
		m[c][v]--
	}
}

// votersFor returns, in column order, the voters whose current first choice is c
func votersFor(m Matrix, c int) []int {
	var out []int
	for v := 0; v < m.Voters(); v++ {
		if m[c][v] == 1 {
			out = append(out, v)
		}
	}
	return out
}
