package provider

import (
	"sync"
	"time"

	"github.com/garagem-ai/garagem/internal/metrics"
)

// BreakerState is the circuit state for one provider.
type BreakerState int

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// maxCooldownFactor caps the exponential cooldown growth at 2^5 = 32x.
const maxCooldownFactor = 5

type breakerEntry struct {
	state               BreakerState
	consecutiveFailures int
	openedAt            time.Time
	reopenCount         int
}

// Breaker tracks per-provider circuit state. It is shared across all
// concurrent conversations, so every read-modify-write holds the mutex;
// critical sections are O(1).
type Breaker struct {
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu      sync.Mutex
	entries map[string]*breakerEntry
}

// NewBreaker creates a circuit breaker that opens after threshold
// consecutive failures and cools down for the given base duration,
// doubling on every reopen.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
		entries:   make(map[string]*breakerEntry),
	}
}

func (b *Breaker) entry(name string) *breakerEntry {
	e, ok := b.entries[name]
	if !ok {
		e = &breakerEntry{}
		b.entries[name] = e
	}
	return e
}

// Allow reports whether a call to the named provider may proceed. An open
// breaker whose cooldown has elapsed moves to half-open and admits exactly
// one trial call; further calls are rejected until the trial resolves.
func (b *Breaker) Allow(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.entry(name)
	switch e.state {
	case StateClosed:
		return true
	case StateHalfOpen:
		// A trial call is already in flight.
		return false
	default: // StateOpen
		if b.now().Sub(e.openedAt) >= b.currentCooldown(e) {
			b.transition(name, e, StateHalfOpen)
			return true
		}
		return false
	}
}

// RecordSuccess closes the breaker and resets its failure count.
func (b *Breaker) RecordSuccess(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.entry(name)
	if e.state != StateClosed {
		b.transition(name, e, StateClosed)
	}
	e.consecutiveFailures = 0
	e.reopenCount = 0
}

// RecordFailure counts a failure. Reaching the threshold while closed opens
// the breaker; a failed half-open trial reopens it with a longer cooldown.
func (b *Breaker) RecordFailure(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.entry(name)
	switch e.state {
	case StateHalfOpen:
		e.reopenCount++
		e.openedAt = b.now()
		b.transition(name, e, StateOpen)
	case StateClosed:
		e.consecutiveFailures++
		if e.consecutiveFailures >= b.threshold {
			e.openedAt = b.now()
			b.transition(name, e, StateOpen)
		}
	}
	// Failures recorded while open (e.g. an abandoned in-flight call
	// resolving late) change nothing.
}

// State returns the provider's current circuit state without mutating it.
func (b *Breaker) State(name string) BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entry(name).state
}

func (b *Breaker) currentCooldown(e *breakerEntry) time.Duration {
	factor := e.reopenCount
	if factor > maxCooldownFactor {
		factor = maxCooldownFactor
	}
	return b.cooldown << factor
}

func (b *Breaker) transition(name string, e *breakerEntry, to BreakerState) {
	e.state = to
	metrics.BreakerTransitionsTotal.WithLabelValues(name, to.String()).Inc()
}
