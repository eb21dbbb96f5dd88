//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garagem-ai/garagem/internal/conversation"
	"github.com/garagem-ai/garagem/internal/inventory"
)

func seedVehicles(t *testing.T, env *TestEnv) {
	t.Helper()
	ctx := context.Background()
	vehicles := []inventory.Vehicle{
		{Brand: "Fiat", Model: "Pulse", Year: 2023, Price: 95000, BodyType: "suv", FuelType: "flex", Available: true},
		{Brand: "Honda", Model: "HR-V", Year: 2022, Price: 105000, BodyType: "suv", FuelType: "flex", Available: true},
		{Brand: "Chevrolet", Model: "Onix", Year: 2021, Price: 68000, BodyType: "hatch", FuelType: "flex", Available: true},
	}
	for i := range vehicles {
		require.NoError(t, env.Vehicles.Create(ctx, &vehicles[i]))
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	env := SetupTestEnv(t)
	seedVehicles(t, env)
	ctx := context.Background()
	identity := "5511955554444"

	reply := env.Engine.Handle(ctx, identity, "oi")
	assert.Contains(t, reply, "assistente da Garagem")

	reply = env.Engine.Handle(ctx, identity, "João")
	assert.Contains(t, reply, "João")

	env.Engine.Handle(ctx, identity, "100 mil")
	env.Engine.Handle(ctx, identity, "cidade")
	reply = env.Engine.Handle(ctx, identity, "suv")

	// 100k with the 20% band covers both SUVs in the seed data.
	assert.Contains(t, reply, "Fiat Pulse 2023")
	assert.Contains(t, reply, "Honda HR-V 2022")

	// State survived each turn in Postgres.
	store := conversation.NewPostgresStore(env.Pool)
	st, err := store.Load(ctx, identity)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, conversation.NodeRecommendation, st.GraphState.CurrentNode)
	require.NotNil(t, st.Profile)
	assert.InDelta(t, 80000, st.Profile.BudgetMin, 0.01)
	assert.InDelta(t, 120000, st.Profile.BudgetMax, 0.01)
	require.NotEmpty(t, st.Recommendations)

	// Interest in an option captures exactly one lead.
	reply = env.Engine.Handle(ctx, identity, "quero comprar o segundo")
	assert.Contains(t, reply, "Registrei seu interesse")
	require.Len(t, env.Bus.Leads, 1)
	assert.Equal(t, identity, env.Bus.Leads[0].Identity)
	assert.Equal(t, "João", env.Bus.Leads[0].CustomerName)

	env.Engine.Handle(ctx, identity, "quero fechar negócio")
	assert.Len(t, env.Bus.Leads, 1)

	// The operator dashboard sees the persisted lead.
	token := LoginOperator(t, env)
	resp := DoRequest(t, env, "GET", "/api/v1/leads", nil, token)
	require.Equal(t, 200, resp.StatusCode)
	result := ParseResponse(t, resp)
	records := result["data"].([]any)
	require.NotEmpty(t, records)
	first := records[0].(map[string]any)
	assert.Equal(t, identity, first["identity"])
}

func TestPipelineDataErasure(t *testing.T) {
	env := SetupTestEnv(t)
	ctx := context.Background()
	identity := "5511944443333"

	env.Engine.Handle(ctx, identity, "oi")
	env.Engine.Handle(ctx, identity, "Maria")

	store := conversation.NewPostgresStore(env.Pool)
	st, err := store.Load(ctx, identity)
	require.NoError(t, err)
	require.NotNil(t, st)

	reply := env.Engine.Handle(ctx, identity, "quero apagar meus dados")
	assert.Contains(t, reply, "removidos")

	st, err = store.Load(ctx, identity)
	require.NoError(t, err)
	assert.Nil(t, st)

	// Erasure leaves an audit trail on the events stream.
	var sawAudit bool
	for _, a := range env.Bus.Audits {
		if a.Identity == identity && a.EventType == "data_deleted" {
			sawAudit = true
		}
	}
	assert.True(t, sawAudit)
}

func TestPipelineTranscriptInRedis(t *testing.T) {
	env := SetupTestEnv(t)
	ctx := context.Background()
	identity := "5511933332222"

	env.Engine.Handle(ctx, identity, "oi")
	env.Engine.Handle(ctx, identity, "Pedro")

	transcript := conversation.NewRedisTranscript(env.RedisClient, 20, time.Hour)
	entries, err := transcript.Recent(ctx, identity, 10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(entries), 4)
	assert.Equal(t, "user", entries[0].Role)
	assert.Equal(t, "oi", entries[0].Content)
}
