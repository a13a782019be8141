// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/danielhkuo/quickly-tally/election"
)

// Close reasons recorded in logs and announcements
const (
	ReasonManual  = "manual"
	ReasonTimeout = "timeout"
)

// ResultStore persists a finished tabulation and returns its snapshot ID
type ResultStore interface {
	SaveResult(ctx context.Context, snap Snapshot, res *election.Result) (string, error)
}

// Announcer publishes a result transcript to whoever is following the poll
type Announcer interface {
	Announce(ctx context.Context, pollID string, transcript []string) error
}

// Outcome is what closing a poll produced
type Outcome struct {
	PollID     string
	SnapshotID string
	Reason     string
	Result     *election.Result
}

// Closer ends polls: it freezes the ballots, tabulates them once, stores the
// result and hands the transcript to the announcer
type Closer struct {
	registry  *Registry
	store     ResultStore
	announcer Announcer
	maxRounds int

	wg sync.WaitGroup
}

// NewCloser wires a closer. store and announcer may be nil.
func NewCloser(registry *Registry, store ResultStore, announcer Announcer, maxRounds int) *Closer {
	return &Closer{
		registry:  registry,
		store:     store,
		announcer: announcer,
		maxRounds: maxRounds,
	}
}

// Close tabulates the poll with the given ID and removes it from the registry.
// If the result cannot be stored the poll stays registered, closed to
// ballots, so a later Close can retry.
func (c *Closer) Close(ctx context.Context, id, reason string) (*Outcome, error) {
	p, err := c.registry.Get(id)
	if err != nil {
		return nil, err
	}

	snap, ok := p.Freeze()
	if !ok {
		return nil, ErrAlreadyClosed
	}

	res, err := c.tabulate(snap)
	if err != nil {
		c.registry.Remove(id)
		slog.Error("tabulation failed", "poll_id", id, "error", err)
		return nil, fmt.Errorf("failed to tabulate poll %s: %w", id, err)
	}
	if err := res.Err(); err != nil {
		slog.Warn("tabulation stopped without a result", "poll_id", id, "rounds", len(res.Rounds), "error", err)
	}
	if res.UnresolvedTie {
		slog.Warn("tie decided by candidate order", "poll_id", id)
	}

	out := &Outcome{PollID: id, Reason: reason, Result: res}
	if c.store != nil {
		out.SnapshotID, err = c.store.SaveResult(ctx, snap, res)
		if err != nil {
			p.unfreeze()
			slog.Error("failed to save result, poll held for retry", "poll_id", id, "error", err)
			return nil, fmt.Errorf("failed to save result for poll %s: %w", id, err)
		}
	}
	c.registry.Remove(id)

	slog.Info("poll closed",
		"poll_id", id,
		"reason", reason,
		"ballots", res.Ballots,
		"winners", res.Winners,
		"snapshot_id", out.SnapshotID,
	)

	if c.announcer != nil {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			// the announcement outlives the request that closed the poll
			if err := c.announcer.Announce(context.WithoutCancel(ctx), id, res.Transcript); err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("failed to announce results", "poll_id", id, "error", err)
			}
		}()
	}
	return out, nil
}

// Wait blocks until every pending announcement has been sent
func (c *Closer) Wait() {
	c.wg.Wait()
}

func (c *Closer) tabulate(snap Snapshot) (*election.Result, error) {
	var t election.Tabulator
	switch snap.Method {
	case election.MethodIRV:
		t = election.IRV{MaxRounds: c.maxRounds}
	default:
		var err error
		t, err = election.For(snap.Method)
		if err != nil {
			return nil, err
		}
	}
	return t.Tabulate(snap.Candidates, snap.Ballots, snap.Winners)
}
