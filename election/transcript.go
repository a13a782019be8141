// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	statusRunning    = "RUNNING"
	statusEliminated = "ELIMINATED"
	statusWon        = "WON"
	statusLost       = "LOST"
	statusFinalist   = "FINALIST"

	ruleLine   = "####################################"
	signOff    = "I LOVE DEMOCRACY"
	opening    = "BEGINNING ELECTION"
	finalTitle = "### FINAL RESULTS ###"
)

// transcript accumulates announcement entries for one run
type transcript struct {
	entries []string
	labels  []string
}

func newTranscript(candidates []string) *transcript {
	return &transcript{
		entries: []string{opening},
		labels:  padLabels(candidates),
	}
}

// padLabels right-pads every label to the longest one so columns line up
func padLabels(candidates []string) []string {
	width := 0
	for _, c := range candidates {
		if n := utf8.RuneCountInString(c); n > width {
			width = n
		}
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c + strings.Repeat(" ", width-utf8.RuneCountInString(c))
	}
	return out
}

// all returns every candidate index in order
func (t *transcript) all() []int {
	rows := make([]int, len(t.labels))
	for c := range rows {
		rows[c] = c
	}
	return rows
}

func (t *transcript) add(entry string) {
	t.entries = append(t.entries, entry)
}

// percent is n as a share of total, 0 when there is nothing to share
func percent(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// line formats one candidate row: status, padded label, count and share
func (t *transcript) line(b *strings.Builder, status string, c, n int, unit string, total int) {
	fmt.Fprintf(b, "%-10s | %s | %04d %s (%.1f%%)\n", status, t.labels[c], n, unit, percent(n, total))
}

// finalEntry lists the given candidates as WON or LOST and signs off.
// counts may be nil when there is no final count to show.
func (t *transcript) finalEntry(rows []int, won []bool, counts []int, unit string, total int) string {
	var b strings.Builder
	b.WriteString(finalTitle + "\n")
	for _, c := range rows {
		status := statusLost
		if won[c] {
			status = statusWon
		}
		if counts == nil {
			fmt.Fprintf(&b, "%-10s | %s\n", status, t.labels[c])
			continue
		}
		t.line(&b, status, c, counts[c], unit, total)
	}
	b.WriteString(ruleLine + "\n")
	b.WriteString(signOff)
	return b.String()
}
