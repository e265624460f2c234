package utils

import (
	"testing"

	"teamnest/config"
	"teamnest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWTToken(t *testing.T) {
	config.AppConfig.EncryptionKey = "test-encryption-key"

	user := &models.User{Email: "a@x.com", TokenVersion: 3}
	user.ID = 7

	access, refresh, err := GenerateJWTToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	for _, token := range []string{access, refresh} {
		claims, err := ParseJWTToken(token)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.UserID)
		assert.Equal(t, 3, claims.TokenVersion)
	}
}

func TestParseJWTTokenWrongKey(t *testing.T) {
	config.AppConfig.EncryptionKey = "test-encryption-key"

	user := &models.User{Email: "a@x.com"}
	user.ID = 1

	access, _, err := GenerateJWTToken(user)
	require.NoError(t, err)

	config.AppConfig.EncryptionKey = "a-different-key"
	_, err = ParseJWTToken(access)
	assert.Error(t, err)
}

func TestParseJWTTokenGarbage(t *testing.T) {
	config.AppConfig.EncryptionKey = "test-encryption-key"

	_, err := ParseJWTToken("not.a.token")
	assert.Error(t, err)
}
