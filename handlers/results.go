// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-tally/db"
	"github.com/danielhkuo/quickly-tally/middleware"
	"github.com/danielhkuo/quickly-tally/poll"
)

type ResultsHandler struct {
	registry *poll.Registry
	store    *db.Store
}

func NewResultsHandler(registry *poll.Registry, store *db.Store) *ResultsHandler {
	return &ResultsHandler{registry: registry, store: store}
}

// GetResults handles GET /polls/{id}/results
// Results stay sealed until the poll is closed
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return
	}

	if _, err := h.registry.Get(pollID); err == nil {
		middleware.ErrorResponse(w, http.StatusForbidden, "Results are sealed until the poll closes")
		return
	}

	snapshot, err := h.store.GetResult(r.Context(), pollID)
	if err == nil {
		middleware.JSONResponse(w, http.StatusOK, snapshot)
		return
	}
	if !errors.Is(err, db.ErrNotFound) {
		slog.Error("failed to load result", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// No result yet: unknown poll, or one still being tabulated
	if _, err := h.store.GetPollSummary(r.Context(), pollID); err == nil {
		middleware.ErrorResponse(w, http.StatusForbidden, "Results are sealed until the poll closes")
		return
	}
	middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
}
