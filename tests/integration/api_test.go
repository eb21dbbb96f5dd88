//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	env := SetupTestEnv(t)

	resp := DoRequest(t, env, "GET", "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	result := ParseResponse(t, resp)
	data := result["data"].(map[string]any)
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "healthy", data["database"])
}

func TestOperatorLogin(t *testing.T) {
	env := SetupTestEnv(t)

	t.Run("successful login", func(t *testing.T) {
		token := LoginOperator(t, env)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		body := map[string]string{"username": testOperatorUser, "password": "senha-errada-mesmo"}
		resp := DoRequest(t, env, "POST", "/api/v1/auth/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown username", func(t *testing.T) {
		body := map[string]string{"username": "intruso", "password": testOperatorPass}
		resp := DoRequest(t, env, "POST", "/api/v1/auth/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("short password rejected before auth", func(t *testing.T) {
		body := map[string]string{"username": testOperatorUser, "password": "curta"}
		resp := DoRequest(t, env, "POST", "/api/v1/auth/login", body, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestVehicleEndpoints(t *testing.T) {
	env := SetupTestEnv(t)
	token := LoginOperator(t, env)

	t.Run("requires auth", func(t *testing.T) {
		resp := DoRequest(t, env, "GET", "/api/v1/vehicles", nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("create and search", func(t *testing.T) {
		body := map[string]any{
			"brand":     "Fiat",
			"model":     "Argo",
			"year":      2022,
			"price":     72000,
			"body_type": "hatch",
			"fuel_type": "flex",
		}
		resp := DoRequest(t, env, "POST", "/api/v1/vehicles", body, token)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		result := ParseResponse(t, resp)
		data := result["data"].(map[string]any)
		assert.NotEmpty(t, data["id"])
		assert.Equal(t, true, data["available"])

		resp = DoRequest(t, env, "GET", "/api/v1/vehicles?body_types=hatch&budget_max=80000", nil, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		result = ParseResponse(t, resp)
		vehicles := result["data"].([]any)
		assert.NotEmpty(t, vehicles)
	})

	t.Run("rejects bad body type", func(t *testing.T) {
		body := map[string]any{
			"brand":     "Fiat",
			"model":     "Toro",
			"year":      2023,
			"price":     130000,
			"body_type": "caminhão",
		}
		resp := DoRequest(t, env, "POST", "/api/v1/vehicles", body, token)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestWebhookQueuesMessages(t *testing.T) {
	env := SetupTestEnv(t)

	body := map[string]string{"identity": "5511988887777", "message": "oi"}
	resp := DoRequest(t, env, "POST", "/api/v1/webhook/messages", body, "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	result := ParseResponse(t, resp)
	data := result["data"].(map[string]any)
	assert.Equal(t, "queued", data["status"])
	assert.NotEmpty(t, data["id"])

	require.NotEmpty(t, env.Bus.Inbound)
	last := env.Bus.Inbound[len(env.Bus.Inbound)-1]
	assert.Equal(t, "5511988887777", last.Identity)
	assert.Equal(t, "webhook", last.Channel)
}

func TestConversationEndpoint(t *testing.T) {
	env := SetupTestEnv(t)
	token := LoginOperator(t, env)

	t.Run("not found before any message", func(t *testing.T) {
		resp := DoRequest(t, env, "GET", "/api/v1/conversations/5500000000000", nil, token)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("returns persisted state", func(t *testing.T) {
		identity := "5511977776666"
		env.Engine.Handle(context.Background(), identity, "olá")

		resp := DoRequest(t, env, "GET", "/api/v1/conversations/"+identity, nil, token)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := ParseResponse(t, resp)
		data := result["data"].(map[string]any)
		assert.Equal(t, identity, data["identity"])
	})
}
