// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrixClone(t *testing.T) {
	m := Matrix{{1, 2}, {2, 1}}
	c := m.Clone()
	c[0][0] = 9

	assert.Equal(t, 1, m[0][0], "clone must not share rows")
	assert.Equal(t, 2, c.Voters())
}

func TestMatrixAppendColumn(t *testing.T) {
	m := NewMatrix(3)
	assert.Equal(t, 0, m.Voters())

	m = m.AppendColumn([]int{1, 0, 2})
	m = m.AppendColumn([]int{0, 1, 0})

	assert.Equal(t, 2, m.Voters())
	assert.Equal(t, []int{1, 0, 2}, m.Column(0))
	assert.Equal(t, []int{0, 1, 0}, m.Column(1))
}

func TestNormalizeRanks(t *testing.T) {
	tests := []struct {
		name   string
		column []int
		want   []int
	}{
		{"already compact", []int{1, 2, 3}, []int{1, 2, 3}},
		{"skipped rank", []int{1, 0, 3}, []int{1, 0, 2}},
		{"starts at two", []int{0, 2, 3}, []int{0, 1, 2}},
		{"duplicate ranks use candidate order", []int{1, 1, 2}, []int{1, 2, 3}},
		{"negative means unranked", []int{-1, 2, 0}, []int{0, 1, 0}},
		{"blank ballot", []int{0, 0, 0}, []int{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatrix(len(tt.column)).AppendColumn(tt.column)
			normalizeRanks(m)
			assert.Equal(t, tt.want, m.Column(0))
		})
	}
}

func TestPadLabels(t *testing.T) {
	got := padLabels([]string{"Joe", "Mary", "NGC 4609"})
	assert.Equal(t, []string{"Joe     ", "Mary    ", "NGC 4609"}, got)
}
