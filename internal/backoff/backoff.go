// Package backoff tracks per-resource failure streaks and hands out
// bounded, jittered exponential requeue delays. State lives in memory; a
// restart starts every resource back at the base delay, same as the
// controller workqueue would.
package backoff

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/cloud37-dev/s3-operator/internal/config"
)

type entry struct {
	bo       *backoff.ExponentialBackOff
	attempts int
}

type Tracker struct {
	base        time.Duration
	cap         time.Duration
	multiplier  float64
	jitter      float64
	maxAttempts int

	mu      sync.Mutex
	entries map[string]*entry
}

func NewTracker(cfg *config.Backoff) *Tracker {
	return &Tracker{
		base:        cfg.Base,
		cap:         cfg.Cap,
		multiplier:  cfg.Multiplier,
		jitter:      cfg.Jitter,
		maxAttempts: cfg.MaxAttempts,
		entries:     map[string]*entry{},
	}
}

// Next records a failure for key and returns the delay before the next
// attempt. Once the attempt budget is spent the delay pins at the cap.
func (t *Tracker) Next(key string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = t.base
		bo.MaxInterval = t.cap
		bo.Multiplier = t.multiplier
		bo.RandomizationFactor = t.jitter
		bo.MaxElapsedTime = 0
		bo.Reset()
		e = &entry{bo: bo}
		t.entries[key] = e
	}

	e.attempts++
	if e.attempts >= t.maxAttempts {
		return t.cap
	}
	return e.bo.NextBackOff()
}

// Attempts returns the current failure streak for key.
func (t *Tracker) Attempts(key string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[key]; ok {
		return e.attempts
	}
	return 0
}

// Exhausted reports whether key has spent its attempt budget.
func (t *Tracker) Exhausted(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[key]
	return ok && e.attempts >= t.maxAttempts
}

// Reset clears the streak after a successful reconcile.
func (t *Tracker) Reset(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
}
