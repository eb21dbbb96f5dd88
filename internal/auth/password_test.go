package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garagem-ai/garagem/internal/config"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, ComparePassword(hash, "correct horse battery staple"))
	assert.Error(t, ComparePassword(hash, "wrong password"))
}

func TestServiceLogin(t *testing.T) {
	hash, err := HashPassword("operator-password-1")
	require.NoError(t, err)

	svc := NewService(
		NewJWTManager("test-secret-key-with-enough-length", time.Hour),
		config.OperatorConfig{Username: "operator", PasswordHash: hash},
	)

	token, _, err := svc.Login("operator", "operator-password-1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login("operator", "wrong")
	assert.Error(t, err)

	_, _, err = svc.Login("someone-else", "operator-password-1")
	assert.Error(t, err)
}
