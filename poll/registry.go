// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/danielhkuo/quickly-tally/auth"
)

// Registry holds the open polls, keyed by ID. Names are unique among open
// polls so a creator cannot start two polls that voters would confuse.
type Registry struct {
	mu    sync.RWMutex
	polls map[string]*Poll
	names map[string]string

	// names claimed by polls still being persisted
	pending map[string]bool
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		polls:   make(map[string]*Poll),
		names:   make(map[string]string),
		pending: make(map[string]bool),
	}
}

// Create validates opts, opens a new poll and registers it
func (r *Registry) Create(opts Options) (*Poll, error) {
	return r.CreateWith(opts, nil)
}

// CreateWith is Create with a persist step. persist runs after validation,
// with the name reserved, and the poll is only visible once it returns nil.
func (r *Registry) CreateWith(opts Options, persist func(Snapshot) error) (*Poll, error) {
	id, err := auth.GenerateID(8)
	if err != nil {
		return nil, err
	}
	p, err := New(id, opts, time.Now())
	if err != nil {
		return nil, err
	}

	if err := r.reserve(p.Name); err != nil {
		return nil, err
	}
	if persist != nil {
		if err := persist(p.Snapshot()); err != nil {
			r.release(p.Name)
			return nil, err
		}
	}

	r.mu.Lock()
	delete(r.pending, p.Name)
	r.polls[p.ID] = p
	r.names[p.Name] = p.ID
	r.mu.Unlock()

	slog.Info("poll opened", "poll_id", p.ID, "name", p.Name, "method", p.Method, "candidates", len(p.Candidates))
	return p, nil
}

func (r *Registry) reserve(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[name]; ok || r.pending[name] {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	r.pending[name] = true
	return nil
}

func (r *Registry) release(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, name)
}

// Restore registers an existing poll, such as one reloaded from the database
func (r *Registry) Restore(p *Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.polls[p.ID]; ok {
		return fmt.Errorf("%w: id %s already registered", ErrInvalidPoll, p.ID)
	}
	if _, ok := r.names[p.Name]; ok || r.pending[p.Name] {
		return fmt.Errorf("%w: %q", ErrDuplicateName, p.Name)
	}
	r.polls[p.ID] = p
	r.names[p.Name] = p.ID
	return nil
}

// Get returns the poll with the given ID
func (r *Registry) Get(id string) (*Poll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.polls[id]
	if !ok {
		return nil, ErrPollNotFound
	}
	return p, nil
}

// GetByName returns the open poll with the given name
func (r *Registry) GetByName(name string) (*Poll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.names[name]
	if !ok {
		return nil, ErrPollNotFound
	}
	return r.polls[id], nil
}

// Remove drops a poll from the registry
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.polls[id]; ok {
		delete(r.names, p.Name)
		delete(r.polls, id)
	}
}

// List returns every registered poll, oldest first
func (r *Registry) List() []*Poll {
	r.mu.RLock()
	out := make([]*Poll, 0, len(r.polls))
	for _, p := range r.polls {
		out = append(out, p)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].OpenedAt.Before(out[j].OpenedAt)
	})
	return out
}

// Expired returns the registered polls whose time limit has passed at now
func (r *Registry) Expired(now time.Time) []*Poll {
	var out []*Poll
	for _, p := range r.List() {
		if p.Closed() || p.Expired(now) {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of registered polls
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.polls)
}
