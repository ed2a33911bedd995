package staterepofake

import (
	"sync"
	"time"

	"github.com/unraid/api-oidc-state/oidcstate"
)

var _ oidcstate.Repo = (*FakeStateRepo)(nil)

// FakeStateRepo wraps an in-memory repo and lets tests inject failures or
// tamper with stored entries.
type FakeStateRepo struct {
	*oidcstate.InMemoryRepo

	lock       sync.Mutex
	upsertErr  error
	takeErr    error
	takePanic  any
	takeMutate func(*oidcstate.StateEntry)
	takes      int
}

func NewFakeStateRepo() *FakeStateRepo {
	return &FakeStateRepo{InMemoryRepo: oidcstate.NewInMemoryRepo()}
}

func (r *FakeStateRepo) FailUpsert(err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.upsertErr = err
}

func (r *FakeStateRepo) FailTake(err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.takeErr = err
}

func (r *FakeStateRepo) PanicOnTake(v any) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.takePanic = v
}

// MutateOnTake rewrites the copy of an entry that TakeIf hands to its match
// function, so the stored record appears different from what was issued.
func (r *FakeStateRepo) MutateOnTake(fn func(*oidcstate.StateEntry)) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.takeMutate = fn
}

func (r *FakeStateRepo) Takes() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.takes
}

func (r *FakeStateRepo) Upsert(entry *oidcstate.StateEntry) error {
	r.lock.Lock()
	err := r.upsertErr
	r.lock.Unlock()
	if err != nil {
		return err
	}
	return r.InMemoryRepo.Upsert(entry)
}

func (r *FakeStateRepo) TakeIf(nonce string, match func(*oidcstate.StateEntry) bool) (*oidcstate.StateEntry, error) {
	r.lock.Lock()
	r.takes++
	err, p, mutate := r.takeErr, r.takePanic, r.takeMutate
	r.lock.Unlock()

	if p != nil {
		panic(p)
	}
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		inner := match
		match = func(e *oidcstate.StateEntry) bool {
			mutate(e)
			return inner == nil || inner(e)
		}
	}
	return r.InMemoryRepo.TakeIf(nonce, match)
}

func (r *FakeStateRepo) DeleteOlderThan(cutoff time.Time) (int, error) {
	return r.InMemoryRepo.DeleteOlderThan(cutoff)
}
