package oidcstate

import (
	"sync"
	"time"

	"github.com/unraid/api-oidc-state/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface.
// Nothing survives a process restart.
type InMemoryRepo struct {
	mu      sync.RWMutex
	entries map[string]*StateEntry
}

var _ Repo = (*InMemoryRepo)(nil)

// NewInMemoryRepo creates a new in-memory state repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		entries: make(map[string]*StateEntry),
	}
}

// Upsert stores an entry under its nonce, replacing any existing one.
func (r *InMemoryRepo) Upsert(entry *StateEntry) error {
	if entry == nil {
		return errors.Wrapf(errors.ErrInvalidParameter, "entry cannot be nil")
	}
	if entry.Nonce == "" {
		return errors.Wrapf(errors.ErrInvalidParameter, "nonce cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Copy to prevent external modifications
	r.entries[entry.Nonce] = entry.clone()
	return nil
}

// TakeIf removes and returns the entry if match accepts it. match sees a copy.
func (r *InMemoryRepo) TakeIf(nonce string, match func(*StateEntry) bool) (*StateEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[nonce]
	if !ok {
		return nil, errors.ErrNotFound
	}
	if match != nil && !match(entry.clone()) {
		return nil, errors.ErrPreconditionFailed
	}
	delete(r.entries, nonce)
	return entry, nil
}

// DeleteOlderThan removes every entry issued before cutoff and reports how
// many were removed.
func (r *InMemoryRepo) DeleteOlderThan(cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for nonce, entry := range r.entries {
		if entry.Timestamp.Before(cutoff) {
			delete(r.entries, nonce)
			removed++
		}
	}
	return removed, nil
}

func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
