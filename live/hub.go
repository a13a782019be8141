// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// DefaultAnnounceDelay spaces transcript entries so subscribers can follow along
const DefaultAnnounceDelay = 500 * time.Millisecond

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans poll updates out to websocket subscribers
type Hub struct {
	mu    sync.RWMutex
	subs  map[string]map[string]Subscriber
	delay time.Duration
}

// NewHub creates a hub; a negative delay disables spacing between transcript entries
func NewHub(delay time.Duration) *Hub {
	if delay < 0 {
		delay = 0
	}
	return &Hub{
		subs:  make(map[string]map[string]Subscriber),
		delay: delay,
	}
}

// Register adds a subscriber to a poll's feed
func (h *Hub) Register(pollID string, s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[pollID]
	if !ok {
		set = make(map[string]Subscriber)
		h.subs[pollID] = set
	}
	set[s.ID()] = s
}

// Unregister removes a subscriber
func (h *Hub) Unregister(pollID, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[pollID]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(h.subs, pollID)
	}
}

// Subscribers returns how many subscribers a poll has
func (h *Hub) Subscribers(pollID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[pollID])
}

func (h *Hub) snapshot(pollID string) []Subscriber {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Subscriber, 0, len(h.subs[pollID]))
	for _, s := range h.subs[pollID] {
		out = append(out, s)
	}
	return out
}

func (h *Hub) send(pollID string, msg Message) {
	for _, s := range h.snapshot(pollID) {
		if err := s.Send(msg); err != nil {
			slog.Warn("failed to send to subscriber", "poll_id", pollID, "subscriber", s.ID(), "error", err)
		}
	}
}

// Broadcast pushes a tally update to every subscriber of the poll
func (h *Hub) Broadcast(pollID string, payload any) {
	h.send(pollID, Message{Type: MsgTally, PollID: pollID, Payload: payload})
}

// Announce sends a result transcript one entry at a time, then a closed message.
// Entries are spaced by the hub's delay.
func (h *Hub) Announce(ctx context.Context, pollID string, transcript []string) error {
	if h.Subscribers(pollID) == 0 {
		slog.Debug("no subscribers for announcement", "poll_id", pollID)
		return nil
	}

	for i, text := range transcript {
		if i > 0 && h.delay > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("announcement interrupted: %w", ctx.Err())
			case <-time.After(h.delay):
			}
		}
		h.send(pollID, Message{
			Type:    MsgTranscript,
			PollID:  pollID,
			Payload: TranscriptEntry{Index: i, Total: len(transcript), Text: text},
		})
	}

	h.send(pollID, Message{Type: MsgClosed, PollID: pollID})
	slog.Info("result announced", "poll_id", pollID, "entries", len(transcript))
	return nil
}

// Serve upgrades the request and streams the poll's feed until the peer leaves.
// initial, when non-nil, is sent as the first tally message.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, pollID string, initial any) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade failed: %w", err)
	}

	c := newClient(conn, h, pollID, uuid.New().String())
	if initial != nil {
		c.Send(Message{Type: MsgTally, PollID: pollID, Payload: initial})
	}
	h.Register(pollID, c)

	slog.Debug("subscriber connected", "poll_id", pollID, "subscriber", c.id)
	c.run()
	slog.Debug("subscriber disconnected", "poll_id", pollID, "subscriber", c.id)
	return nil
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[string]map[string]Subscriber)
	h.mu.Unlock()

	for _, set := range subs {
		for _, s := range set {
			s.Close()
		}
	}
}
