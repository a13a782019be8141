// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/quickly-tally/db"
	"github.com/danielhkuo/quickly-tally/live"
	"github.com/danielhkuo/quickly-tally/middleware"
	"github.com/danielhkuo/quickly-tally/poll"
)

type LiveHandler struct {
	registry *poll.Registry
	store    *db.Store
	hub      *live.Hub
}

func NewLiveHandler(registry *poll.Registry, store *db.Store, hub *live.Hub) *LiveHandler {
	return &LiveHandler{registry: registry, store: store, hub: hub}
}

// Stream handles GET /polls/{id}/live
// Subscribers get the current tally, every update after it, and the
// result transcript once the poll closes.
func (h *LiveHandler) Stream(w http.ResponseWriter, r *http.Request) {
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

	if err := h.hub.Serve(w, r, pollID, p.Tally(time.Now())); err != nil {
		// the upgrader has already answered the client
		slog.Warn("live feed failed", "poll_id", pollID, "error", err)
	}
}
