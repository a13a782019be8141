// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid election input")
	ErrUnknownMethod  = errors.New("unknown voting method")
	ErrNonConvergence = errors.New("election did not converge")
)
