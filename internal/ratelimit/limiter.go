// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package ratelimit provides an in-process sliding-window rate limiter
// and the HTTP middleware that applies it per client IP. Counters live in
// memory; a multi-instance deployment rate-limits per instance.
package ratelimit

import (
	"sync"
	"time"
)

// Result describes the outcome of one limiter check.
type Result struct {
	// Allowed indicates whether the request may proceed.
	Allowed bool

	// Limit is the maximum number of requests per window.
	Limit int

	// Remaining is how many requests are left in the current window.
	Remaining int

	// ResetAt is when the oldest counted request falls out of the window.
	ResetAt time.Time
}

// RetryAfter returns how long to wait before the next request could be
// allowed. Zero when the request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Limiter checks and consumes rate-limit slots per key.
type Limiter interface {
	// Allow consumes one slot for key if available.
	Allow(key string) *Result

	// Reset clears all recorded requests for key.
	Reset(key string)
}

// slidingWindow tracks individual request timestamps per key. More exact
// than a fixed-window counter: a burst at a window boundary cannot double
// the effective limit.
type slidingWindow struct {
	mu      sync.Mutex
	entries map[string][]time.Time
	limit   int
	window  time.Duration

	lastSweep time.Time
}

// NewSlidingWindow builds a [Limiter] allowing limit requests per window
// for each key.
func NewSlidingWindow(limit int, window time.Duration) (Limiter, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if window <= 0 {
		return nil, ErrInvalidWindow
	}

	return &slidingWindow{
		entries:   make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		lastSweep: time.Now(),
	}, nil
}

// Allow implements [Limiter].
func (sw *slidingWindow) Allow(key string) *Result {
	now := time.Now()
	cutoff := now.Add(-sw.window)

	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.sweepLocked(now, cutoff)

	// Drop timestamps that slid out of the window.
	kept := sw.entries[key][:0]
	for _, ts := range sw.entries[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	allowed := len(kept) < sw.limit
	if allowed {
		kept = append(kept, now)
	}
	sw.entries[key] = kept

	resetAt := now.Add(sw.window)
	if len(kept) > 0 {
		resetAt = kept[0].Add(sw.window)
	}

	return &Result{
		Allowed:   allowed,
		Limit:     sw.limit,
		Remaining: max(0, sw.limit-len(kept)),
		ResetAt:   resetAt,
	}
}

// Reset implements [Limiter].
func (sw *slidingWindow) Reset(key string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	delete(sw.entries, key)
}

// sweepLocked evicts keys whose every timestamp expired, at most once per
// window, so idle clients do not accumulate forever. Caller holds mu.
func (sw *slidingWindow) sweepLocked(now time.Time, cutoff time.Time) {
	if now.Sub(sw.lastSweep) < sw.window {
		return
	}
	sw.lastSweep = now

	for key, timestamps := range sw.entries {
		live := false
		for _, ts := range timestamps {
			if ts.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(sw.entries, key)
		}
	}
}
