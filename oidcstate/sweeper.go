package oidcstate

import (
	"context"
	"sync"
	"time"

	"github.com/unraid/api-oidc-state/internal/config"
)

// Sweeper periodically evicts expired state entries. Validation already
// rejects expired tokens; the sweep only bounds memory held by abandoned
// flows.
type Sweeper struct {
	service  *Service
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper creates a sweeper for service running every
// cfg.GetStateSweepInterval(). A nil config or non-positive interval uses one
// minute.
func NewSweeper(service *Service, cfg config.StateConfig) *Sweeper {
	interval := time.Minute
	if cfg != nil && cfg.GetStateSweepInterval() > 0 {
		interval = cfg.GetStateSweepInterval()
	}
	return &Sweeper{
		service:  service,
		interval: interval,
	}
}

// Interval is the time between sweeps.
func (sw *Sweeper) Interval() time.Duration {
	return sw.interval
}

// Start launches the sweep loop. It runs until ctx is cancelled or Stop is
// called. Calling Start on a running sweeper is a no-op.
func (sw *Sweeper) Start(ctx context.Context) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	sw.cancel = cancel
	sw.done = make(chan struct{})
	go sw.run(ctx, sw.done)
}

// Running reports whether the sweep loop is active.
func (sw *Sweeper) Running() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.cancel != nil
}

// Stop halts the loop and waits for it to exit. Safe to call more than once.
func (sw *Sweeper) Stop() {
	sw.mu.Lock()
	cancel, done := sw.cancel, sw.done
	sw.cancel, sw.done = nil, nil
	sw.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (sw *Sweeper) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer sw.release(done)

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := sw.service.SweepExpired(); removed > 0 {
				sw.service.logger.Debug().Int("removed", removed).Int("pending", sw.service.Pending()).Msg("Swept expired state entries")
			}
		case <-ctx.Done():
			return
		}
	}
}

// release clears the running state when the loop ends on its own, so a later
// Start launches a new one. Stop has already cleared it otherwise.
func (sw *Sweeper) release(done chan struct{}) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.done != done {
		return
	}
	sw.cancel()
	sw.cancel, sw.done = nil, nil
}
