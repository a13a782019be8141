// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/quickly-tally/auth"
	"github.com/danielhkuo/quickly-tally/cliparse"
	"github.com/danielhkuo/quickly-tally/db"
	"github.com/danielhkuo/quickly-tally/election"
	"github.com/danielhkuo/quickly-tally/middleware"
	"github.com/danielhkuo/quickly-tally/models"
	"github.com/danielhkuo/quickly-tally/poll"
)

type PollHandler struct {
	registry *poll.Registry
	store    *db.Store
	closer   *poll.Closer
	cfg      cliparse.Config
}

func NewPollHandler(registry *poll.Registry, store *db.Store, closer *poll.Closer, cfg cliparse.Config) *PollHandler {
	return &PollHandler{registry: registry, store: store, closer: closer, cfg: cfg}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Method == "" {
		req.Method = string(election.MethodIRV)
	}
	method, err := election.ParseMethod(req.Method)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "method must be irv or star")
		return
	}
	if req.TimeLimitHours < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "time_limit_hours must not be negative")
		return
	}

	// the poll row must exist before any ballot for it can be recorded
	var saveErr error
	p, err := h.registry.CreateWith(poll.Options{
		Name:        req.Name,
		Description: req.Description,
		Creator:     req.Creator,
		Method:      method,
		Candidates:  req.Candidates,
		Winners:     req.Winners,
		TimeLimit:   time.Duration(req.TimeLimitHours * float64(time.Hour)),
	}, func(snap poll.Snapshot) error {
		saveErr = h.store.SavePoll(r.Context(), snap)
		if saveErr != nil {
			slog.Error("failed to save poll", "poll_id", snap.ID, "error", saveErr)
		}
		return saveErr
	})
	if saveErr != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}
	if err != nil {
		writePollError(w, err, "create poll")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID:   p.ID,
		AdminKey: auth.GenerateAdminKey(p.ID, h.cfg.AdminKeySalt),
		ClosesAt: p.ClosesAt(),
	})
}

// ListPolls handles GET /polls, optionally filtered by ?name=
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	if name := r.URL.Query().Get("name"); name != "" {
		p, err := h.registry.GetByName(name)
		if err != nil {
			writePollError(w, err, "find poll")
			return
		}
		middleware.JSONResponse(w, http.StatusOK, []models.Poll{pollInfo(p, now)})
		return
	}

	open := h.registry.List()
	out := make([]models.Poll, 0, len(open))
	for _, p := range open {
		out = append(out, pollInfo(p, now))
	}
	middleware.JSONResponse(w, http.StatusOK, out)
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	if p, err := h.registry.Get(pollID); err == nil {
		middleware.JSONResponse(w, http.StatusOK, pollInfo(p, time.Now()))
		return
	}

	// Closed polls only live in the database
	summary, err := h.store.GetPollSummary(r.Context(), pollID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to load poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	summary.ClosesIn = "closed"
	middleware.JSONResponse(w, http.StatusOK, summary)
}

// GetTally handles GET /polls/{id}/tally
func (h *PollHandler) GetTally(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	p, err := h.registry.Get(pollID)
	if err != nil {
		writeNotOpen(w, r, h.store, pollID)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, p.Tally(time.Now()))
}

// ClosePoll handles POST /polls/{id}/close
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	// Validate admin key
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(pollID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	out, err := h.closer.Close(r.Context(), pollID, poll.ReasonManual)
	if errors.Is(err, poll.ErrPollNotFound) {
		writeNotOpen(w, r, h.store, pollID)
		return
	}
	if err != nil {
		writePollError(w, err, "close poll")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ClosePollResponse{
		ClosedAt:   time.Now().UTC(),
		SnapshotID: out.SnapshotID,
		Result:     out.Result,
	})
}

// writeNotOpen answers for a poll that is not open: 409 if the database
// knows it, 404 otherwise
func writeNotOpen(w http.ResponseWriter, r *http.Request, store *db.Store, pollID string) {
	summary, err := store.GetPollSummary(r.Context(), pollID)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to load poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if summary.Status == models.StatusClosed {
		middleware.ErrorResponse(w, http.StatusConflict, poll.ErrPollClosed.Error())
		return
	}
	// Known to the database but not open in memory: being closed right now
	middleware.ErrorResponse(w, http.StatusConflict, poll.ErrAlreadyClosed.Error())
}

// pollInfo renders an open poll for the API
func pollInfo(p *poll.Poll, now time.Time) models.Poll {
	snap := p.Snapshot()
	status := models.StatusOpen
	if snap.Closed {
		status = models.StatusClosed
	}
	return models.Poll{
		ID:          snap.ID,
		Name:        snap.Name,
		Description: snap.Description,
		Creator:     snap.Creator,
		Method:      string(snap.Method),
		Candidates:  snap.Candidates,
		Winners:     snap.Winners,
		Status:      status,
		OpenedAt:    snap.OpenedAt,
		ClosesAt:    p.ClosesAt(),
		ClosesIn:    p.Tally(now).ClosesIn,
		BallotCount: len(snap.Voters),
	}
}
