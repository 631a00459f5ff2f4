package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.GenerateAccessToken("64b7f0c2a1d3e4f5a6b7c8d9", "dr@example.com", []string{"doctor"})
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1d3e4f5a6b7c8d9", claims.DoctorID)
	assert.Equal(t, "dr@example.com", claims.Email)
	assert.Equal(t, []string{"doctor"}, claims.Roles)
}

func TestJWTManager_RejectsForeignSecret(t *testing.T) {
	issuer := NewJWTManager("one", time.Hour)
	verifier := NewJWTManager("two", time.Hour)

	token, err := issuer.GenerateAccessToken("doc-1", "", nil)
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m := NewJWTManager("secret", -time.Minute)

	token, err := m.GenerateAccessToken("doc-1", "", nil)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}
