package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse_ConRole(t *testing.T) {
	tok, err := Generate(testSecret, "operador-7", RoleOperario, "logistica-test", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "operador-7", claims.Subject)
	assert.Equal(t, RoleOperario, claims.Role)
	assert.Equal(t, "logistica-test", claims.Issuer)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := Generate(testSecret, "u", RoleAdmin, "logistica-test", -time.Minute)
	require.NoError(t, err)

	_, err = Parse(testSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := Generate(testSecret, "u", RoleAdmin, "logistica-test", time.Hour)
	require.NoError(t, err)

	_, err = Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, err := Generate("", "u", RoleAdmin, "i", time.Hour)
	assert.Error(t, err)
	_, err = Parse("", "x.y.z")
	assert.Error(t, err)
}
