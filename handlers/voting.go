// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/quickly-tally/auth"
	"github.com/danielhkuo/quickly-tally/db"
	"github.com/danielhkuo/quickly-tally/middleware"
	"github.com/danielhkuo/quickly-tally/models"
	"github.com/danielhkuo/quickly-tally/poll"
)

type VotingHandler struct {
	registry *poll.Registry
	store    *db.Store
	updates  poll.Broadcaster
}

// NewVotingHandler wires ballot submission. updates may be nil.
func NewVotingHandler(registry *poll.Registry, store *db.Store, updates poll.Broadcaster) *VotingHandler {
	return &VotingHandler{registry: registry, store: store, updates: updates}
}

// SubmitBallot handles POST /polls/{id}/ballots
func (h *VotingHandler) SubmitBallot(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	voterID, err := auth.NormalizeVoterID(r.Header.Get("X-Voter-ID"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-Voter-ID header is required")
		return
	}

	var req models.SubmitBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p, err := h.registry.Get(pollID)
	if err != nil {
		writeNotOpen(w, r, h.store, pollID)
		return
	}

	position, err := p.Accept(voterID, req.Ballot)
	if err != nil {
		writePollError(w, err, "submit ballot")
		return
	}

	// The ballot already counts; a failed write only loses the audit row
	ballotID, err := h.store.SaveBallot(r.Context(), p.ID, voterID, position, req.Ballot)
	if err != nil {
		slog.Error("failed to record ballot", "poll_id", p.ID, "position", position, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Ballot counted but not recorded")
		return
	}

	slog.Info("ballot accepted", "poll_id", p.ID, "ballot_id", ballotID, "ballots", position+1)

	if h.updates != nil {
		h.updates.Broadcast(p.ID, p.Tally(time.Now()))
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitBallotResponse{
		BallotID: ballotID,
		Message:  "Ballot accepted",
	})
}
