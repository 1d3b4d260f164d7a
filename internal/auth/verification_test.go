package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationToken(t *testing.T) {
	plaintext, hash, err := generateVerificationToken()
	require.NoError(t, err)
	require.NotEmpty(t, plaintext)
	require.NotEmpty(t, hash)
	require.NotEqual(t, plaintext, hash)

	require.True(t, tokenMatchesHash(plaintext, hash))
	require.False(t, tokenMatchesHash("something-else", hash))

	// Each issued token is unique.
	other, _, err := generateVerificationToken()
	require.NoError(t, err)
	require.NotEqual(t, plaintext, other)
}
