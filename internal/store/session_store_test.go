package store_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"postbox/internal/crypto"
	"postbox/internal/domain"
	"postbox/internal/store"
)

func TestSessionLifecycle(t *testing.T) {
	s := store.NewSessionStore()
	id, err := crypto.GenerateIdentity()
	require.NoError(t, err)

	tok, key, err := s.Create(&id.PublicKey)
	require.NoError(t, err)
	require.Len(t, key, crypto.SessionKeyBytes)

	sess, ok := s.Authenticate(tok)
	require.True(t, ok)
	require.Equal(t, key, sess.Key)
	require.False(t, sess.LoggedIn())

	require.True(t, s.SetUsername(tok, "alice"))
	sess, ok = s.Authenticate(tok)
	require.True(t, ok)
	require.Equal(t, domain.Username("alice"), sess.Username)
	require.Equal(t, key, sess.Key, "session key must not change on login")

	require.True(t, s.Remove(tok))
	_, ok = s.Authenticate(tok)
	require.False(t, ok)
	require.False(t, s.Remove(tok))
	require.False(t, s.SetUsername(tok, "alice"))
}

func TestConcurrentCreatesIssueDistinctTokens(t *testing.T) {
	const n = 64

	s := store.NewSessionStore()
	id, err := crypto.GenerateIdentity()
	require.NoError(t, err)

	var (
		mu     sync.Mutex
		tokens = make(map[domain.Token]struct{}, n)
		wg     sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, _, err := s.Create(&id.PublicKey)
			require.NoError(t, err)
			mu.Lock()
			tokens[tok] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, tokens, n, "tokens must be pairwise distinct")
	require.Equal(t, n, s.Len())
}
