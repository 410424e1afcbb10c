package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const sweepInterval = 1 * time.Minute

// Limiter is a sliding-window rate limiter keyed by an arbitrary string,
// typically a client address. Each key carries its own lock so unrelated
// clients never contend with each other.
type Limiter struct {
	mu        sync.Mutex
	entries   map[string]*entry
	retention time.Duration
	now       func() time.Time
}

type entry struct {
	mu sync.Mutex
	// stamps is ordered oldest-first; pruned on every access.
	stamps []time.Time
	// evicted is set by the sweeper under the entry lock. A consumer
	// that raced the sweeper re-fetches the key instead of writing to a
	// dropped entry, so no event is ever lost.
	evicted bool
}

// New creates a Limiter. Keys idle longer than retention are dropped by
// the sweep loop; retention must be at least as long as the largest
// window passed to TryConsume.
func New(retention time.Duration) *Limiter {
	return &Limiter{
		entries:   make(map[string]*entry),
		retention: retention,
		now:       time.Now,
	}
}

// TryConsume records one event for key if fewer than limit events
// happened within the trailing window, and reports whether the event
// was admitted. The prune, check and append are a single atomic unit
// per key: concurrent callers for the same key are linearized and the
// (limit+1)-th event inside a window never succeeds.
func (l *Limiter) TryConsume(key string, limit int, window time.Duration) bool {
	for {
		l.mu.Lock()
		e, ok := l.entries[key]
		if !ok {
			e = &entry{}
			l.entries[key] = e
		}
		l.mu.Unlock()

		e.mu.Lock()
		if e.evicted {
			e.mu.Unlock()
			continue
		}

		now := l.now()
		cutoff := now.Add(-window)
		drop := 0
		for drop < len(e.stamps) && e.stamps[drop].Before(cutoff) {
			drop++
		}
		e.stamps = append(e.stamps[:0], e.stamps[drop:]...)

		allowed := len(e.stamps) < limit
		if allowed {
			e.stamps = append(e.stamps, now)
		}
		e.mu.Unlock()
		return allowed
	}
}

// Start runs the periodic sweep until ctx is cancelled. The sweep only
// bounds memory; TryConsume is correct without it.
func (l *Limiter) Start(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-ctx.Done():
			logrus.Info("shutting down rate limiter sweep")
			return
		}
	}
}

// sweep drops keys whose timestamp lists are empty after pruning.
func (l *Limiter) sweep() {
	cutoff := l.now().Add(-l.retention)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		e.mu.Lock()
		drop := 0
		for drop < len(e.stamps) && e.stamps[drop].Before(cutoff) {
			drop++
		}
		e.stamps = e.stamps[drop:]
		if len(e.stamps) == 0 {
			e.evicted = true
			delete(l.entries, key)
		}
		e.mu.Unlock()
	}
}

// Len reports the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
