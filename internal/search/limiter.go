package search

import (
	"sync"
)

// Limiter caps the number of searches per unauthenticated caller. Every
// attempt consumes quota regardless of outcome, so a failed geocode or an
// empty result still counts. Authenticated callers bypass the limiter
// entirely; the pipeline never consults it for them.
type Limiter struct {
	mu    sync.Mutex
	limit int
	used  map[string]int
}

// NewLimiter returns a limiter allowing up to limit searches per caller.
// A non-positive limit disables limiting.
func NewLimiter(limit int) *Limiter {
	return &Limiter{
		limit: limit,
		used:  make(map[string]int),
	}
}

// Allow consumes one search attempt for the caller and reports whether the
// attempt is within quota. The counter increments even when the answer is
// false, matching the attempt-counting contract.
func (l *Limiter) Allow(callerID string) bool {
	if l.limit <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	used := l.used[callerID]
	l.used[callerID] = used + 1
	return used < l.limit
}

// Used returns the number of attempts recorded for the caller.
func (l *Limiter) Used(callerID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used[callerID]
}

// Reset clears the caller's counter. Used when a caller authenticates.
func (l *Limiter) Reset(callerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.used, callerID)
}
