package envelope

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Asymmetric holds a value of type T encrypted to an RSA public key with
// PKCS#1 v1.5 padding. Only the matching private-key holder can open it,
// even though the envelope transits alongside cleartext framing.
type Asymmetric[T any] struct {
	Data []byte `cbor:"d"`
}

// SealAsymmetric serializes v and encrypts it to key. Fails if the payload
// does not fit the key modulus.
func SealAsymmetric[T any](v T, key *rsa.PublicKey) (Asymmetric[T], error) {
	plain, err := cbor.Marshal(v)
	if err != nil {
		return Asymmetric[T]{}, fmt.Errorf("envelope: serialize: %w", err)
	}
	ct, err := rsa.EncryptPKCS1v15(rand.Reader, key, plain)
	if err != nil {
		return Asymmetric[T]{}, fmt.Errorf("envelope: rsa encrypt: %w", err)
	}
	return Asymmetric[T]{Data: ct}, nil
}

// Open decrypts the envelope with key and deserializes the plaintext.
func (e Asymmetric[T]) Open(key *rsa.PrivateKey) (T, error) {
	var v T
	plain, err := rsa.DecryptPKCS1v15(nil, key, e.Data)
	if err != nil {
		return v, fmt.Errorf("envelope: rsa decrypt: %w", err)
	}
	if err := cbor.Unmarshal(plain, &v); err != nil {
		return v, fmt.Errorf("envelope: deserialize: %w", err)
	}
	return v, nil
}
