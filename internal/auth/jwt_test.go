package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	m := NewJWTManager("test-secret-key-with-enough-length", time.Hour)

	token, expiresIn, err := m.GenerateToken("operator")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(3600), expiresIn)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Username)
	assert.Equal(t, "garagem", claims.Issuer)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	m1 := NewJWTManager("secret-one-with-enough-length-ok", time.Hour)
	m2 := NewJWTManager("secret-two-with-enough-length-ok", time.Hour)

	token, _, err := m1.GenerateToken("operator")
	require.NoError(t, err)

	_, err = m2.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	m := NewJWTManager("test-secret-key-with-enough-length", -time.Minute)

	token, _, err := m.GenerateToken("operator")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	m := NewJWTManager("test-secret-key-with-enough-length", time.Hour)

	_, err := m.ValidateToken("not.a.token")
	assert.Error(t, err)
}
