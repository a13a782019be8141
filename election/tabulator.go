// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import "fmt"

// Tabulator is implemented by every voting method
type Tabulator interface {
	Tabulate(candidates []string, ballots Matrix, winners int) (*Result, error)
}

// For returns the tabulator for a method
func For(method Method) (Tabulator, error) {
	switch method {
	case MethodIRV:
		return IRV{}, nil
	case MethodSTAR:
		return STAR{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, string(method))
}

// Tabulate dispatches to the tabulator for method
func Tabulate(method Method, candidates []string, ballots Matrix, winners int) (*Result, error) {
	t, err := For(method)
	if err != nil {
		return nil, err
	}
	return t.Tabulate(candidates, ballots, winners)
}
