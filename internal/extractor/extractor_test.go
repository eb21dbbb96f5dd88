package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garagem-ai/garagem/internal/provider"
)

type stubRouter struct {
	reply string
	err   error
	opts  provider.Options
}

func (s *stubRouter) ChatCompletion(_ context.Context, _ []provider.Message, opts provider.Options) (string, error) {
	s.opts = opts
	return s.reply, s.err
}

func TestExtractParsesDelta(t *testing.T) {
	r := &stubRouter{reply: `{"budget": 50000, "usage_type": "cidade", "body_types": ["suv", "sedan"]}`}
	e := New(r)

	d, err := e.Extract(context.Background(), "tenho uns 50 mil, uso na cidade, gosto de suv ou sedan")
	require.NoError(t, err)

	require.NotNil(t, d.Budget)
	assert.Equal(t, 50000.0, *d.Budget)
	require.NotNil(t, d.UsageType)
	assert.Equal(t, "cidade", *d.UsageType)
	assert.Equal(t, []string{"suv", "sedan"}, d.BodyTypes)
	assert.True(t, r.opts.JSONOutput, "extraction must request JSON output")
}

func TestExtractEmptyObject(t *testing.T) {
	r := &stubRouter{reply: `{}`}
	e := New(r)

	d, err := e.Extract(context.Background(), "bom dia")
	require.NoError(t, err)
	assert.True(t, d.Empty())
}

func TestExtractStripsCodeFences(t *testing.T) {
	r := &stubRouter{reply: "```json\n{\"fuel_type\": \"flex\"}\n```"}
	e := New(r)

	d, err := e.Extract(context.Background(), "prefiro flex")
	require.NoError(t, err)
	require.NotNil(t, d.FuelType)
	assert.Equal(t, "flex", *d.FuelType)
}

func TestExtractPropagatesProviderFailure(t *testing.T) {
	r := &stubRouter{err: provider.ErrAllProvidersFailed}
	e := New(r)

	_, err := e.Extract(context.Background(), "qualquer coisa")
	assert.ErrorIs(t, err, provider.ErrAllProvidersFailed)
}

func TestExtractRejectsNonJSON(t *testing.T) {
	r := &stubRouter{reply: "claro! aqui estão as preferências"}
	e := New(r)

	_, err := e.Extract(context.Background(), "oi")
	assert.Error(t, err)
}
