package domain

import (
	"crypto/rsa"
	"time"
)

// Session is a server-side session record. Key is fixed at creation; only
// Username mutates, flipping from empty to a name on successful login.
type Session struct {
	ClientKey *rsa.PublicKey
	Key       []byte
	Username  Username
}

// LoggedIn reports whether the session has authenticated an identity.
func (s Session) LoggedIn() bool { return s.Username != "" }

// SessionStore maps live tokens to session records.
type SessionStore interface {
	// Create registers a session for a client key and returns the freshly
	// allocated token plus the generated session key. Token allocation and
	// insertion are atomic with respect to concurrent Creates.
	Create(clientKey *rsa.PublicKey) (Token, []byte, error)

	// Authenticate resolves a bearer token to its session record.
	Authenticate(tok Token) (Session, bool)

	// SetUsername marks the session as logged in under username.
	SetUsername(tok Token, username Username) bool

	// Remove deletes the session (logout). The token is dead afterwards.
	Remove(tok Token) bool
}

// AccountStore maps usernames to password digests.
type AccountStore interface {
	// Create registers a new account. Returns ErrInvalidUsername or
	// ErrAccountExists; the existence check and insert are one critical
	// section.
	Create(username Username, passwordDigest string) error

	// Verify reports whether the account exists and the digest matches.
	Verify(username Username, passwordDigest string) bool
}

// MailboxStore holds per-username FIFO queues of undelivered messages.
type MailboxStore interface {
	// Enqueue appends msg to recipient's queue, creating it if absent.
	Enqueue(recipient Username, msg Inbound)

	// Dequeue removes and returns the oldest message for username, blocking
	// until one is available. A zero deadline waits indefinitely; otherwise
	// ErrTimeout is returned once the deadline elapses. ErrStoreClosed is
	// returned if the store shuts down while waiting.
	Dequeue(username Username, deadline time.Duration) (Inbound, error)
}
