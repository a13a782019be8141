// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		input   string
		want    Method
		wantErr bool
	}{
		{"irv", MethodIRV, false},
		{"STV", MethodIRV, false},
		{" rcv ", MethodIRV, false},
		{"star", MethodSTAR, false},
		{"approval", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMethod(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownMethod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMethodMaxValue(t *testing.T) {
	assert.Equal(t, 4, MethodIRV.MaxValue(4))
	assert.Equal(t, MaxScore, MethodSTAR.MaxValue(4))
	assert.True(t, MethodIRV.Ranked())
	assert.False(t, MethodSTAR.Ranked())
}

func TestTabulateDispatch(t *testing.T) {
	ballots := Matrix{{1, 1, 2}, {2, 2, 1}}

	res, err := Tabulate(MethodIRV, []string{"A", "B"}, ballots, 1)
	require.NoError(t, err)
	assert.Equal(t, MethodIRV, res.Method)

	res, err = Tabulate(MethodSTAR, []string{"A", "B"}, ballots, 1)
	require.NoError(t, err)
	assert.Equal(t, MethodSTAR, res.Method)

	_, err = Tabulate(Method("borda"), []string{"A", "B"}, ballots, 1)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}
