package store

import (
	"crypto/rsa"
	"sync"

	"github.com/google/uuid"

	"postbox/internal/crypto"
	"postbox/internal/domain"
)

// SessionStore maps live tokens to session records.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.Token]domain.Session
}

// NewSessionStore returns an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[domain.Token]domain.Session)}
}

// Create generates a session key, allocates a token unused among live
// sessions, and inserts the record. Allocation and insertion happen under
// one exclusive lock so concurrent handshakes can never share a token.
func (s *SessionStore) Create(clientKey *rsa.PublicKey) (domain.Token, []byte, error) {
	key, err := crypto.NewSessionKey()
	if err != nil {
		return domain.Token{}, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var tok domain.Token
	for {
		tok = domain.Token(uuid.New())
		if _, taken := s.sessions[tok]; !taken {
			break
		}
	}
	s.sessions[tok] = domain.Session{ClientKey: clientKey, Key: key}
	return tok, key, nil
}

// Authenticate resolves a token to its session record.
func (s *SessionStore) Authenticate(tok domain.Token) (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[tok]
	return sess, ok
}

// SetUsername marks the session as logged in under username.
func (s *SessionStore) SetUsername(tok domain.Token, username domain.Username) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[tok]
	if !ok {
		return false
	}
	sess.Username = username
	s.sessions[tok] = sess
	return true
}

// Remove deletes the session. Subsequent requests with the token fail
// authentication.
func (s *SessionStore) Remove(tok domain.Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[tok]; !ok {
		return false
	}
	delete(s.sessions, tok)
	return true
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

var _ domain.SessionStore = (*SessionStore)(nil)
