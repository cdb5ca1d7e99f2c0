package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
)

const (
	// IdentityBits is the RSA modulus size for per-connection identity keys.
	IdentityBits = 2048

	// SessionKeyBytes is the size of the symmetric session key.
	SessionKeyBytes = 16
)

// GenerateIdentity returns a fresh RSA identity key pair. Both client and
// server generate one per connection; neither key outlives it.
func GenerateIdentity() (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, IdentityBits)
}

// NewSessionKey returns a fresh random session key.
func NewSessionKey() ([]byte, error) {
	key := make([]byte, SessionKeyBytes)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// DigestPassword returns the hex SHA-256 digest of a password. The digest is
// what travels to the server and what the account store compares; the server
// never sees the password itself.
func DigestPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
