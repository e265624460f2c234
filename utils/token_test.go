package utils

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSignInToken(t *testing.T) {
	token, err := GenerateSignInToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)

	_, err = hex.DecodeString(token)
	assert.NoError(t, err)

	other, err := GenerateSignInToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestHashAndCheckSignInToken(t *testing.T) {
	token, err := GenerateSignInToken()
	require.NoError(t, err)

	hash, err := HashSignInToken(token)
	require.NoError(t, err)
	assert.NotEqual(t, token, hash)

	assert.True(t, CheckSignInToken(hash, token))
	assert.False(t, CheckSignInToken(hash, "deadbeef"))
	assert.False(t, CheckSignInToken("", token))
}
