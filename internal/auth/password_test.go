package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Abc12345!", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "Abc12345!", hash)

	require.True(t, VerifyPassword(hash, "Abc12345!"))
	require.False(t, VerifyPassword(hash, "abc12345!"))
	require.False(t, VerifyPassword(hash, ""))
}

func TestVerifyPasswordRejectsBadHash(t *testing.T) {
	require.False(t, VerifyPassword("not-a-bcrypt-hash", "Abc12345!"))
}
