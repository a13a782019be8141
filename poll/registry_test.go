// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-tally/election"
)

func lunchOptions(name string) Options {
	return Options{
		Name:       name,
		Method:     election.MethodIRV,
		Candidates: []string{"Tacos", "Pho", "Pizza"},
		TimeLimit:  time.Hour,
	}
}

func TestRegistryCreateAndGet(t *testing.T) {
	r := NewRegistry()

	p, err := r.Create(lunchOptions("Lunch"))
	require.NoError(t, err)
	assert.Len(t, p.ID, 16)

	got, err := r.Get(p.ID)
	require.NoError(t, err)
	assert.Same(t, p, got)

	got, err = r.GetByName("Lunch")
	require.NoError(t, err)
	assert.Same(t, p, got)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrPollNotFound)
	_, err = r.GetByName("Dinner")
	assert.ErrorIs(t, err, ErrPollNotFound)
}

func TestRegistryRejectsInvalidOptions(t *testing.T) {
	r := NewRegistry()

	_, err := r.Create(Options{Name: "Empty", Method: election.MethodIRV})
	assert.ErrorIs(t, err, ErrInvalidPoll)
	assert.Zero(t, r.Len())
}

func TestRegistryDuplicateName(t *testing.T) {
	r := NewRegistry()

	first, err := r.Create(lunchOptions("Lunch"))
	require.NoError(t, err)

	_, err = r.Create(lunchOptions("Lunch"))
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, 1, r.Len())

	// the name is free again once the first poll is gone
	r.Remove(first.ID)
	_, err = r.Create(lunchOptions("Lunch"))
	assert.NoError(t, err)
}

func TestRegistryCreateWithPersistsFirst(t *testing.T) {
	r := NewRegistry()

	var seen Snapshot
	p, err := r.CreateWith(lunchOptions("Lunch"), func(snap Snapshot) error {
		seen = snap
		// not yet visible, but the name is taken
		_, err := r.Get(snap.ID)
		assert.ErrorIs(t, err, ErrPollNotFound)
		_, err = r.Create(lunchOptions("Lunch"))
		assert.ErrorIs(t, err, ErrDuplicateName)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, p.ID, seen.ID)
	assert.Equal(t, []string{"Tacos", "Pho", "Pizza"}, seen.Candidates)
	got, err := r.Get(p.ID)
	require.NoError(t, err)
	assert.Same(t, p, got)
}

func TestRegistryCreateWithPersistFailure(t *testing.T) {
	r := NewRegistry()
	saveErr := errors.New("disk full")

	_, err := r.CreateWith(lunchOptions("Lunch"), func(Snapshot) error { return saveErr })
	assert.ErrorIs(t, err, saveErr)
	assert.Zero(t, r.Len())

	// the name is free again
	_, err = r.Create(lunchOptions("Lunch"))
	assert.NoError(t, err)
}

func TestRegistryRestore(t *testing.T) {
	r := NewRegistry()
	p, err := New("abc", lunchOptions("Lunch"), time.Now())
	require.NoError(t, err)

	require.NoError(t, r.Restore(p))
	assert.ErrorIs(t, r.Restore(p), ErrInvalidPoll)

	got, err := r.Get("abc")
	require.NoError(t, err)
	assert.Same(t, p, got)
}

func TestRegistryListAndExpired(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	old, err := New("old", lunchOptions("Breakfast"), now.Add(-2*time.Hour))
	require.NoError(t, err)
	fresh, err := New("fresh", lunchOptions("Dinner"), now)
	require.NoError(t, err)
	require.NoError(t, r.Restore(fresh))
	require.NoError(t, r.Restore(old))

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "old", list[0].ID)
	assert.Equal(t, "fresh", list[1].ID)

	expired := r.Expired(now)
	require.Len(t, expired, 1)
	assert.Equal(t, "old", expired[0].ID)

	r.Remove("old")
	r.Remove("old")
	assert.Empty(t, r.Expired(now))
	assert.Equal(t, 1, r.Len())
}
