package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moka_pos/internal/models"
)

func TestGenerateAndParseJWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-de-test")

	token, err := GenerateJWT(models.User{
		ID:    "u1",
		Email: "caissier@moka.local",
		Role:  "cashier",
	})
	require.NoError(t, err)

	claims, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims["user_id"])
	assert.Equal(t, "caissier@moka.local", claims["email"])
	assert.Equal(t, "cashier", claims["role"])
}

func TestParseJWTRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "bonne-clé")
	token, err := GenerateJWT(models.User{ID: "u1"})
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "autre-clé")
	_, err = ParseJWT(token)
	assert.Error(t, err)
}
