package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(t *testing.T) (*Breaker, *time.Time) {
	t.Helper()
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	b := NewBreaker(3, 60*time.Second)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker(t)

	b.RecordFailure("gemini")
	b.RecordFailure("gemini")
	assert.Equal(t, StateClosed, b.State("gemini"))
	assert.True(t, b.Allow("gemini"))

	b.RecordFailure("gemini")
	assert.Equal(t, StateOpen, b.State("gemini"))
	assert.False(t, b.Allow("gemini"))
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(t)

	b.RecordFailure("gemini")
	b.RecordFailure("gemini")
	b.RecordSuccess("gemini")
	b.RecordFailure("gemini")
	b.RecordFailure("gemini")

	// Non-consecutive failures never add up to the threshold.
	assert.Equal(t, StateClosed, b.State("gemini"))
}

func TestBreakerHalfOpenAdmitsSingleTrial(t *testing.T) {
	b, now := newTestBreaker(t)

	for i := 0; i < 3; i++ {
		b.RecordFailure("gemini")
	}
	require.Equal(t, StateOpen, b.State("gemini"))

	*now = now.Add(59 * time.Second)
	assert.False(t, b.Allow("gemini"), "cooldown not elapsed yet")

	*now = now.Add(1 * time.Second)
	assert.True(t, b.Allow("gemini"), "first call after cooldown is the trial")
	assert.Equal(t, StateHalfOpen, b.State("gemini"))
	assert.False(t, b.Allow("gemini"), "only one trial call at a time")
}

func TestBreakerHalfOpenSuccessCloses(t *testing.T) {
	b, now := newTestBreaker(t)

	for i := 0; i < 3; i++ {
		b.RecordFailure("gemini")
	}
	*now = now.Add(60 * time.Second)
	require.True(t, b.Allow("gemini"))

	b.RecordSuccess("gemini")
	assert.Equal(t, StateClosed, b.State("gemini"))
	assert.True(t, b.Allow("gemini"))
}

func TestBreakerHalfOpenFailureReopensWithLongerCooldown(t *testing.T) {
	b, now := newTestBreaker(t)

	for i := 0; i < 3; i++ {
		b.RecordFailure("gemini")
	}
	*now = now.Add(60 * time.Second)
	require.True(t, b.Allow("gemini"))

	b.RecordFailure("gemini")
	require.Equal(t, StateOpen, b.State("gemini"))

	// Cooldown doubled to 120s after the failed trial.
	*now = now.Add(60 * time.Second)
	assert.False(t, b.Allow("gemini"))
	*now = now.Add(60 * time.Second)
	assert.True(t, b.Allow("gemini"))
}

func TestBreakerCooldownGrowthIsCapped(t *testing.T) {
	b, now := newTestBreaker(t)

	e := &breakerEntry{reopenCount: 50}
	assert.Equal(t, 60*time.Second<<maxCooldownFactor, b.currentCooldown(e))
	_ = now
}

func TestBreakerTracksProvidersIndependently(t *testing.T) {
	b, _ := newTestBreaker(t)

	for i := 0; i < 3; i++ {
		b.RecordFailure("gemini")
	}

	assert.Equal(t, StateOpen, b.State("gemini"))
	assert.Equal(t, StateClosed, b.State("openai"))
	assert.True(t, b.Allow("openai"))
}

func TestBreakerIgnoresFailuresWhileOpen(t *testing.T) {
	b, now := newTestBreaker(t)

	for i := 0; i < 3; i++ {
		b.RecordFailure("gemini")
	}
	openedAt := *now

	// A late-resolving in-flight call reports failure while open.
	*now = now.Add(30 * time.Second)
	b.RecordFailure("gemini")

	// The cooldown clock still runs from the original open.
	*now = openedAt.Add(60 * time.Second)
	assert.True(t, b.Allow("gemini"))
}
