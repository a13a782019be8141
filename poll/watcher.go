// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultWatchInterval is how often the watcher looks for expired polls
const DefaultWatchInterval = 60 * time.Second

// Broadcaster pushes a message to everyone following a poll
type Broadcaster interface {
	Broadcast(pollID string, msg any)
}

// Watcher closes polls once their time limit passes and refreshes the live
// tally of the ones still open
type Watcher struct {
	registry *Registry
	closer   *Closer
	updates  Broadcaster
	interval time.Duration
}

// NewWatcher returns a watcher; updates may be nil
func NewWatcher(registry *Registry, closer *Closer, updates Broadcaster, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	return &Watcher{
		registry: registry,
		closer:   closer,
		updates:  updates,
		interval: interval,
	}
}

// Run sweeps on every tick until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("poll watcher started", "interval", w.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("poll watcher stopped")
			return
		case now := <-ticker.C:
			w.Sweep(ctx, now)
		}
	}
}

// Sweep closes every expired poll and returns how many it closed
func (w *Watcher) Sweep(ctx context.Context, now time.Time) int {
	if w.updates != nil {
		for _, p := range w.registry.List() {
			if !p.Closed() && !p.Expired(now) {
				w.updates.Broadcast(p.ID, p.Tally(now))
			}
		}
	}

	closed := 0
	for _, p := range w.registry.Expired(now) {
		_, err := w.closer.Close(ctx, p.ID, ReasonTimeout)
		switch {
		case err == nil:
			closed++
		case errors.Is(err, ErrAlreadyClosed), errors.Is(err, ErrPollNotFound):
			// closed manually since Expired was read
		default:
			slog.Error("failed to close expired poll", "poll_id", p.ID, "error", err)
		}
	}
	return closed
}
