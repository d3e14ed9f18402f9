// Package ratelimit provides a fixed-window in-memory rate limiter keyed by
// subject (user id, conversation id, or any caller-chosen string).
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of a single rate-limit check.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool
	// Remaining is the quota left in the current window after this check.
	Remaining int
	// ResetTime is when the current window ends and the quota refills.
	ResetTime time.Time
}

// Stats is an aggregate snapshot of limiter activity.
type Stats struct {
	Quota      int   `json:"quota"`
	WindowSecs int   `json:"window_secs"`
	ActiveKeys int   `json:"active_keys"`
	Allowed    int64 `json:"allowed"`
	Denied     int64 `json:"denied"`
}

type window struct {
	count int
	start time.Time
}

// Limiter counts requests per key in fixed windows. A key's counter resets
// when its window elapses; stale keys are pruned opportunistically.
type Limiter struct {
	quota  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	windows   map[string]*window
	allowed   int64
	denied    int64
	lastPrune time.Time
}

// New creates a limiter allowing quota requests per key per window.
func New(quota int, windowDur time.Duration) *Limiter {
	if quota <= 0 {
		quota = 60
	}
	if windowDur <= 0 {
		windowDur = time.Minute
	}
	return &Limiter{
		quota:   quota,
		window:  windowDur,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// Check consumes one unit of quota for key if available. The check and the
// count update happen under one lock, so two racing requests for the last
// slot resolve to exactly one allow.
func (l *Limiter) Check(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		w = &window{start: now}
		l.windows[key] = w
	}

	reset := w.start.Add(l.window)
	if w.count >= l.quota {
		l.denied++
		return Decision{Allowed: false, Remaining: 0, ResetTime: reset}
	}

	w.count++
	l.allowed++
	return Decision{Allowed: true, Remaining: l.quota - w.count, ResetTime: reset}
}

// prune drops expired windows at most once per window duration, so keys for
// subjects never seen again do not accumulate. Caller must hold the lock.
func (l *Limiter) prune(now time.Time) {
	if now.Sub(l.lastPrune) < l.window {
		return
	}
	l.lastPrune = now
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, key)
		}
	}
}

// Reset clears all windows and counters.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows = make(map[string]*window)
	l.allowed = 0
	l.denied = 0
}

// GetStats returns a snapshot of limiter activity, pruning expired windows.
func (l *Limiter) GetStats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, key)
		}
	}

	return Stats{
		Quota:      l.quota,
		WindowSecs: int(l.window / time.Second),
		ActiveKeys: len(l.windows),
		Allowed:    l.allowed,
		Denied:     l.denied,
	}
}
