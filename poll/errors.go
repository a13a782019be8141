// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import "errors"

var (
	ErrPollClosed     = errors.New("poll is closed")
	ErrDuplicateVoter = errors.New("voter has already voted")
	ErrInvalidBallot  = errors.New("invalid ballot")
	ErrInvalidPoll    = errors.New("invalid poll")
	ErrPollNotFound   = errors.New("poll not found")
	ErrAlreadyClosed  = errors.New("poll already closed")
	ErrDuplicateName  = errors.New("a poll with this name is already open")
)
