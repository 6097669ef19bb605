package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	SetSecret("test-secret")

	token, err := GenerateToken("u-1", "Nodira Rahimova", "nodira.r@example.uz", "signee", "Direktor")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "signee", claims.Role)
	assert.Equal(t, "Direktor", claims.Title)
	assert.Equal(t, "nodira.r@example.uz", claims.Email)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	SetSecret("one")
	token, err := GenerateToken("u-1", "A", "a@example.uz", "admin", "")
	require.NoError(t, err)

	SetSecret("two")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "internal-memorandum", Slugify("  Internal Memorandum! "))
	assert.Equal(t, "external-outgoing-letter", Slugify("External / Outgoing Letter"))
	assert.Equal(t, "it-bolimi", Slugify("IT Bo'limi"))
}
