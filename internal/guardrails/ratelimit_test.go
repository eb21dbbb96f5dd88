package guardrails

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_UnderLimit(t *testing.T) {
	rl := NewRateLimiter(10, time.Minute)

	for i := 0; i < 10; i++ {
		assert.True(t, rl.Allow("551199990000"), "message %d should be allowed", i+1)
	}
	assert.Equal(t, 10, rl.Usage("551199990000"))
}

func TestRateLimiter_EleventhDenied(t *testing.T) {
	rl := NewRateLimiter(10, time.Minute)

	for i := 0; i < 10; i++ {
		assert.True(t, rl.Allow("551199990000"))
	}
	assert.False(t, rl.Allow("551199990000"), "11th message in the window must be denied")
}

func TestRateLimiter_WindowReset(t *testing.T) {
	now := time.Now()
	rl := NewRateLimiter(10, time.Minute)
	rl.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		rl.Allow("551199990000")
	}
	assert.False(t, rl.Allow("551199990000"))

	// Advance past the window; counting starts over
	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("551199990000"))
	assert.Equal(t, 1, rl.Usage("551199990000"))
}

func TestRateLimiter_IdentitiesIsolated(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))

	assert.True(t, rl.Allow("b"))
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	rl := NewRateLimiter(1000, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				rl.Allow("shared")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, rl.Usage("shared"))
}
