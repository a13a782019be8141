// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBroadcaster struct {
	mu   sync.Mutex
	msgs map[string][]any
}

func (b *fakeBroadcaster) Broadcast(pollID string, msg any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.msgs == nil {
		b.msgs = map[string][]any{}
	}
	b.msgs[pollID] = append(b.msgs[pollID], msg)
}

func TestWatcherSweep(t *testing.T) {
	r := NewRegistry()
	store := &fakeStore{}
	updates := &fakeBroadcaster{}
	w := NewWatcher(r, NewCloser(r, store, nil, 0), updates, time.Minute)

	short, err := r.Create(Options{Name: "Short", Method: "irv", Candidates: []string{"A", "B"}, TimeLimit: time.Minute})
	require.NoError(t, err)
	long, err := r.Create(Options{Name: "Long", Method: "star", Candidates: []string{"A", "B"}, TimeLimit: 3 * time.Hour})
	require.NoError(t, err)

	closed := w.Sweep(context.Background(), time.Now().Add(time.Hour))

	assert.Equal(t, 1, closed)
	require.Len(t, store.saved, 1)
	assert.Equal(t, short.ID, store.saved[0].ID)

	_, err = r.Get(short.ID)
	assert.ErrorIs(t, err, ErrPollNotFound)
	_, err = r.Get(long.ID)
	assert.NoError(t, err)

	require.Len(t, updates.msgs[long.ID], 1)
	tally, ok := updates.msgs[long.ID][0].(Tally)
	require.True(t, ok)
	assert.Equal(t, long.ID, tally.PollID)
	assert.Empty(t, updates.msgs[short.ID])
}

func TestWatcherSweepRetriesHeldPoll(t *testing.T) {
	r := NewRegistry()
	store := &fakeStore{err: errors.New("disk full")}
	w := NewWatcher(r, NewCloser(r, store, nil, 0), nil, time.Minute)

	p, err := r.Create(Options{Name: "Flaky", Method: "irv", Candidates: []string{"A", "B"}, TimeLimit: time.Minute})
	require.NoError(t, err)
	later := time.Now().Add(time.Hour)

	assert.Zero(t, w.Sweep(context.Background(), later))
	_, err = r.Get(p.ID)
	require.NoError(t, err)

	store.err = nil
	assert.Equal(t, 1, w.Sweep(context.Background(), later))
	require.Len(t, store.saved, 1)
	assert.Equal(t, p.ID, store.saved[0].ID)
	assert.Zero(t, r.Len())
}

func TestWatcherRunStopsOnCancel(t *testing.T) {
	r := NewRegistry()
	w := NewWatcher(r, NewCloser(r, nil, nil, 0), nil, 10*time.Millisecond)

	_, err := r.Create(Options{Name: "Instant", Method: "irv", Candidates: []string{"A"}, TimeLimit: time.Nanosecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestNewWatcherDefaultInterval(t *testing.T) {
	w := NewWatcher(NewRegistry(), nil, nil, 0)
	assert.Equal(t, DefaultWatchInterval, w.interval)
}
