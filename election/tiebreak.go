// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import "sort"

// favor picks which end of the secondary counts survives a tie-break round
type favor int

const (
	// favorFewest keeps the candidates with the least lower-rank support (elimination)
	favorFewest favor = iota
	// favorMost keeps the candidates with the most lower-rank support (winner selection)
	favorMost
)

// breakTie narrows tied candidates by counting how many ballots rank each of
// them 2nd, then 3rd, and so on through the last rank. If that never
// separates them the lowest index is returned and resolved is false.
func breakTie(m Matrix, tied []int, f favor) (winner int, resolved bool) {
	remaining := append([]int(nil), tied...)
	sort.Ints(remaining)
	if len(remaining) == 1 {
		return remaining[0], true
	}

	voters := m.Voters()
	for rank := 2; rank <= len(m) && len(remaining) > 1; rank++ {
		counts := make([]int, len(remaining))
		for i, c := range remaining {
			for v := 0; v < voters; v++ {
				if m[c][v] == rank {
					counts[i]++
				}
			}
		}

		best := counts[0]
		for _, n := range counts[1:] {
			if (f == favorFewest && n < best) || (f == favorMost && n > best) {
				best = n
			}
		}

		kept := remaining[:0]
		for i, c := range remaining {
			if counts[i] == best {
				kept = append(kept, c)
			}
		}
		remaining = kept
	}

	if len(remaining) == 1 {
		return remaining[0], true
	}
	return remaining[0], false
}
