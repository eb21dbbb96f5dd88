package provider

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/garagem-ai/garagem/internal/metrics"
)

// ErrAllProvidersFailed signals total provider unavailability on a call with
// no offline substitute (structured JSON extraction). Callers substitute a
// fixed degraded message; the error never reaches an end user verbatim.
var ErrAllProvidersFailed = errors.New("all model providers failed")

// Router tries providers in priority order, skipping open breakers, and
// degrades to the offline responder when every provider is unusable.
type Router struct {
	providers []Provider
	breaker   *Breaker
	offline   *OfflineResponder
	timeout   time.Duration
}

// NewRouter creates a provider router. Providers are sorted by ascending
// priority (cheapest / most preferred first) once, at construction.
func NewRouter(breaker *Breaker, timeout time.Duration, providers ...Provider) *Router {
	sorted := make([]Provider, len(providers))
	copy(sorted, providers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})
	return &Router{
		providers: sorted,
		breaker:   breaker,
		offline:   NewOfflineResponder(),
		timeout:   timeout,
	}
}

// ChatCompletion returns the first successful provider generation. On total
// failure it falls back to the offline responder for free-form chat, or
// returns ErrAllProvidersFailed for JSON calls, which the offline tier
// cannot substitute.
func (r *Router) ChatCompletion(ctx context.Context, msgs []Message, opts Options) (string, error) {
	for _, p := range r.providers {
		if !r.breaker.Allow(p.Name()) {
			slog.Debug("provider skipped, breaker not closed", "provider", p.Name())
			continue
		}

		text, err := r.attempt(ctx, p, msgs, opts)
		if err != nil {
			// Timeouts and context cancellation count as failures too:
			// an abandoned call is a failed call for breaker purposes.
			slog.Warn("provider call failed", "provider", p.Name(), "error", err)
			r.breaker.RecordFailure(p.Name())
			metrics.ProviderCallsTotal.WithLabelValues(p.Name(), "failure").Inc()
			continue
		}

		r.breaker.RecordSuccess(p.Name())
		metrics.ProviderCallsTotal.WithLabelValues(p.Name(), "success").Inc()
		return text, nil
	}

	if opts.JSONOutput {
		return "", ErrAllProvidersFailed
	}

	slog.Warn("all providers unusable, serving offline response")
	metrics.ProviderCallsTotal.WithLabelValues("offline", "success").Inc()
	return r.offline.Respond(msgs), nil
}

func (r *Router) attempt(ctx context.Context, p Provider, msgs []Message, opts Options) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	text, err := p.Generate(callCtx, msgs, opts)
	metrics.ProviderCallDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", errors.New("provider returned empty text")
	}
	return text, nil
}
