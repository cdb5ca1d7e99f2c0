package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"postbox/internal/crypto"
)

func TestNewSessionKey(t *testing.T) {
	a, err := crypto.NewSessionKey()
	require.NoError(t, err)
	require.Len(t, a, crypto.SessionKeyBytes)

	b, err := crypto.NewSessionKey()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestDigestPassword(t *testing.T) {
	d := crypto.DigestPassword("hunter2")
	require.Len(t, d, 64)
	require.Equal(t, d, crypto.DigestPassword("hunter2"))
	require.NotEqual(t, d, crypto.DigestPassword("hunter3"))
}
