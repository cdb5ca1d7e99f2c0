package domain

import "errors"

// Authentication errors. Recoverable by the client via re-handshake or
// re-login; client-side state for the stale token is cleared on receipt.
var (
	ErrInvalidToken = errors.New("postbox: invalid session token")
	ErrNotLoggedIn  = errors.New("postbox: session not logged in")
)

// Business errors. The connection stays open and no state is mutated.
var (
	ErrAccountExists     = errors.New("postbox: account already exists")
	ErrInvalidUsername   = errors.New("postbox: invalid username")
	ErrIncorrectPassword = errors.New("postbox: incorrect password")
)

// Transport and protocol errors.
var (
	ErrDisconnected    = errors.New("postbox: connection lost")
	ErrInvalidResponse = errors.New("postbox: unexpected response packet")
	ErrHandshakeFailed = errors.New("postbox: handshake failed")
)

// Store errors.
var (
	ErrTimeout     = errors.New("postbox: deadline elapsed")
	ErrStoreClosed = errors.New("postbox: store closed")
	ErrDecryptFail = errors.New("postbox: payload decryption failed")
)
