// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"fmt"
	"strings"
)

// Method selects the tabulation algorithm for a poll
type Method string

const (
	MethodIRV  Method = "irv"
	MethodSTAR Method = "star"
)

// ParseMethod accepts the method names voters are likely to type.
// "stv" and "rcv" are the same ranked-choice count as "irv".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "irv", "stv", "rcv":
		return MethodIRV, nil
	case "star":
		return MethodSTAR, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Ranked reports whether ballots for this method hold ranks rather than scores
func (m Method) Ranked() bool {
	return m == MethodIRV
}

// MaxValue is the largest entry a ballot may hold for this method
func (m Method) MaxValue(candidates int) int {
	if m == MethodSTAR {
		return MaxScore
	}
	return candidates
}

func (m Method) String() string {
	return string(m)
}
