package domain

import "encoding/hex"

// Username identifies an account. A valid username is non-empty and
// strictly alphanumeric.
type Username string

// String returns the string form of the username.
func (u Username) String() string { return string(u) }

// Valid reports whether the username is acceptable for account creation.
func (u Username) Valid() bool {
	if len(u) == 0 {
		return false
	}
	for _, r := range u {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// TokenSize is the size of a session token in bytes.
const TokenSize = 16

// Token is the 128-bit bearer credential issued at handshake time. Any
// request presenting a live token is treated as coming from that session's
// owner, so tokens only ever travel asymmetrically sealed to the server key.
type Token [TokenSize]byte

// String returns the hex form of the token. Log it at DEBUG only.
func (t Token) String() string { return hex.EncodeToString(t[:]) }

// Credentials is the login/create-account payload, carried symmetrically
// sealed under the session key.
type Credentials struct {
	Username       Username `cbor:"u"`
	PasswordDigest string   `cbor:"p"`
}

// Outbound is a message as submitted by a sender. The server fills in the
// sender from the authenticated session; clients never assert their own name.
type Outbound struct {
	Recipients []Username `cbor:"r"`
	Contents   string     `cbor:"c"`
}

// Inbound is a message as delivered to a recipient's mailbox. Recipients is
// the full fan-out list the sender addressed, not deduplicated.
type Inbound struct {
	Sender     Username   `cbor:"s"`
	Recipients []Username `cbor:"r"`
	Contents   string     `cbor:"c"`
}
