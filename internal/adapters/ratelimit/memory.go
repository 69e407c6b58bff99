// Package ratelimit provides fixed-window request limiters.
// Bursts straddling a window boundary are accepted as a known limitation of
// fixed windows.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// anonymousIdentity is the bucket used when no identity is supplied.
const anonymousIdentity = "anonymous"

type window struct {
	count   int
	expires time.Time
}

// InMemoryLimiter is a per-identity fixed-window counter held in process
// memory. Loss of this state simply resets limits.
type InMemoryLimiter struct {
	mu        sync.Mutex
	limit     int
	windowLen time.Duration
	windows   map[string]*window
	now       func() time.Time
}

// NewInMemoryLimiter creates a limiter allowing limit calls per windowLen.
func NewInMemoryLimiter(limit int, windowLen time.Duration) *InMemoryLimiter {
	if limit <= 0 {
		limit = 10
	}
	if windowLen <= 0 {
		windowLen = time.Minute
	}
	return &InMemoryLimiter{
		limit:     limit,
		windowLen: windowLen,
		windows:   make(map[string]*window),
		now:       time.Now,
	}
}

// Allow reports whether identity may proceed. The first increment starts the
// window; once the counter reaches the limit inside the window, calls are
// rejected until the window expires. Increment-and-compare runs under one
// lock so concurrent requests cannot both slip past the threshold.
func (l *InMemoryLimiter) Allow(ctx context.Context, identity string) bool {
	if identity == "" {
		identity = anonymousIdentity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[identity]
	if !ok || now.After(w.expires) {
		w = &window{expires: now.Add(l.windowLen)}
		l.windows[identity] = w
	}

	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}
