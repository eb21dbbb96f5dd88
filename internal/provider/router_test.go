package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name     string
	priority int
	reply    string
	err      error
	calls    int
}

func (s *stubProvider) Name() string  { return s.name }
func (s *stubProvider) Priority() int { return s.priority }

func (s *stubProvider) Generate(_ context.Context, _ []Message, _ Options) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func userMsg(text string) []Message {
	return []Message{{Role: RoleUser, Content: text}}
}

func TestRouterPrefersLowestPriority(t *testing.T) {
	first := &stubProvider{name: "gemini", priority: 1, reply: "from gemini"}
	second := &stubProvider{name: "openai", priority: 2, reply: "from openai"}

	// Registration order must not matter.
	r := NewRouter(NewBreaker(3, time.Minute), time.Second, second, first)

	text, err := r.ChatCompletion(context.Background(), userMsg("oi"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "from gemini", text)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestRouterFailsOverToNextProvider(t *testing.T) {
	first := &stubProvider{name: "gemini", priority: 1, err: errors.New("quota exceeded")}
	second := &stubProvider{name: "openai", priority: 2, reply: "from openai"}

	r := NewRouter(NewBreaker(3, time.Minute), time.Second, first, second)

	text, err := r.ChatCompletion(context.Background(), userMsg("oi"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "from openai", text)
	assert.Equal(t, 1, first.calls)
}

func TestRouterSkipsOpenBreaker(t *testing.T) {
	first := &stubProvider{name: "gemini", priority: 1, reply: "from gemini"}
	second := &stubProvider{name: "openai", priority: 2, reply: "from openai"}

	b := NewBreaker(3, time.Minute)
	for i := 0; i < 3; i++ {
		b.RecordFailure("gemini")
	}
	r := NewRouter(b, time.Second, first, second)

	text, err := r.ChatCompletion(context.Background(), userMsg("oi"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "from openai", text)
	assert.Equal(t, 0, first.calls, "open breaker must prevent the call entirely")
}

func TestRouterTreatsEmptyReplyAsFailure(t *testing.T) {
	first := &stubProvider{name: "gemini", priority: 1, reply: ""}
	second := &stubProvider{name: "openai", priority: 2, reply: "from openai"}

	b := NewBreaker(3, time.Minute)
	r := NewRouter(b, time.Second, first, second)

	text, err := r.ChatCompletion(context.Background(), userMsg("oi"), Options{})
	require.NoError(t, err)
	assert.Equal(t, "from openai", text)
}

func TestRouterNeverReturnsEmptyForFreeFormChat(t *testing.T) {
	first := &stubProvider{name: "gemini", priority: 1, err: errors.New("down")}
	second := &stubProvider{name: "openai", priority: 2, err: errors.New("down")}

	r := NewRouter(NewBreaker(3, time.Minute), time.Second, first, second)

	text, err := r.ChatCompletion(context.Background(), userMsg("qual o preço?"), Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}

func TestRouterReturnsErrorForFailedJSONCalls(t *testing.T) {
	first := &stubProvider{name: "gemini", priority: 1, err: errors.New("down")}

	r := NewRouter(NewBreaker(3, time.Minute), time.Second, first)

	text, err := r.ChatCompletion(context.Background(), userMsg("oi"), Options{JSONOutput: true})
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.Empty(t, text)
}

func TestRouterFailuresFeedTheBreaker(t *testing.T) {
	first := &stubProvider{name: "gemini", priority: 1, err: errors.New("down")}

	b := NewBreaker(3, time.Minute)
	r := NewRouter(b, time.Second, first)

	for i := 0; i < 3; i++ {
		_, _ = r.ChatCompletion(context.Background(), userMsg("oi"), Options{})
	}

	assert.Equal(t, StateOpen, b.State("gemini"))
	assert.Equal(t, 3, first.calls)
}

func TestRouterWithNoProvidersServesOffline(t *testing.T) {
	r := NewRouter(NewBreaker(3, time.Minute), time.Second)

	text, err := r.ChatCompletion(context.Background(), userMsg("bom dia"), Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}
