package store

import (
	"sync"

	"postbox/internal/domain"
)

// AccountStore maps usernames to password digests. Accounts are immutable
// once created; there is no password-change operation.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[domain.Username]string
}

// NewAccountStore returns an empty AccountStore.
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[domain.Username]string)}
}

// Create registers username with its password digest. The existence check
// and the insert share one critical section, so concurrent creates of the
// same name yield exactly one success.
func (s *AccountStore) Create(username domain.Username, passwordDigest string) error {
	if !username.Valid() {
		return domain.ErrInvalidUsername
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.accounts[username]; taken {
		return domain.ErrAccountExists
	}
	s.accounts[username] = passwordDigest
	return nil
}

// Verify reports whether username exists with exactly this digest.
func (s *AccountStore) Verify(username domain.Username, passwordDigest string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.accounts[username]
	return ok && stored == passwordDigest
}

var _ domain.AccountStore = (*AccountStore)(nil)
