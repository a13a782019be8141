// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-tally/middleware"
	"github.com/danielhkuo/quickly-tally/poll"
)

// pollErrorStatus maps poll errors to HTTP status codes
func pollErrorStatus(err error) int {
	switch {
	case errors.Is(err, poll.ErrPollNotFound):
		return http.StatusNotFound
	case errors.Is(err, poll.ErrDuplicateVoter),
		errors.Is(err, poll.ErrPollClosed),
		errors.Is(err, poll.ErrAlreadyClosed),
		errors.Is(err, poll.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, poll.ErrInvalidBallot),
		errors.Is(err, poll.ErrInvalidPoll):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writePollError answers with the status for err; unexpected errors are logged
// and their text is not sent to the client
func writePollError(w http.ResponseWriter, err error, action string) {
	status := pollErrorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "action", action, "error", err)
		middleware.ErrorResponse(w, status, "Failed to "+action)
		return
	}
	middleware.ErrorResponse(w, status, err.Error())
}
