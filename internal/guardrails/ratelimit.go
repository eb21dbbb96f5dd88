package guardrails

import (
	"sync"
	"time"
)

// window tracks one identity's message count inside the active window.
type window struct {
	count       int
	windowStart time.Time
}

// RateLimiter is an in-memory per-identity fixed-window message counter.
// Windows are process-local and lost on restart; with a sub-minute window
// that is acceptable, so nothing here touches persistent storage.
type RateLimiter struct {
	max    int
	period time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

// NewRateLimiter creates a rate limiter allowing max messages per period.
func NewRateLimiter(max int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		max:     max,
		period:  period,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// Allow records one message for the identity and reports whether it is under
// the limit. The pre-increment count decides: the max+1th message inside a
// window is denied.
func (rl *RateLimiter) Allow(identity string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	w, ok := rl.windows[identity]
	if !ok || now.Sub(w.windowStart) >= rl.period {
		rl.windows[identity] = &window{count: 1, windowStart: now}
		rl.sweep(now)
		return true
	}

	if w.count >= rl.max {
		return false
	}
	w.count++
	return true
}

// Usage returns the identity's message count in the active window.
func (rl *RateLimiter) Usage(identity string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[identity]
	if !ok || rl.now().Sub(w.windowStart) >= rl.period {
		return 0
	}
	return w.count
}

// sweep drops expired windows. Called opportunistically under the lock so the
// map does not grow with one entry per identity ever seen.
func (rl *RateLimiter) sweep(now time.Time) {
	if len(rl.windows) < 1024 {
		return
	}
	for id, w := range rl.windows {
		if now.Sub(w.windowStart) >= rl.period {
			delete(rl.windows, id)
		}
	}
}
