package envelope

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var errMalformed = errors.New("envelope: malformed symmetric ciphertext")

// Symmetric holds a value of type T encrypted under a shared key with
// AES-CBC and PKCS#7 padding. The IV occupies the first block of Data.
type Symmetric[T any] struct {
	Data []byte `cbor:"d"`
}

// SealSymmetric serializes v and encrypts it under key with a fresh random IV.
func SealSymmetric[T any](v T, key []byte) (Symmetric[T], error) {
	plain, err := cbor.Marshal(v)
	if err != nil {
		return Symmetric[T]{}, fmt.Errorf("envelope: serialize: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return Symmetric[T]{}, fmt.Errorf("envelope: aes: %w", err)
	}
	padded := pad(plain, aes.BlockSize)
	buf := make([]byte, aes.BlockSize+len(padded))
	iv := buf[:aes.BlockSize]
	if _, err := rand.Read(iv); err != nil {
		return Symmetric[T]{}, fmt.Errorf("envelope: iv: %w", err)
	}
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(buf[aes.BlockSize:], padded)
	return Symmetric[T]{Data: buf}, nil
}

// Open decrypts the envelope with key and deserializes the plaintext.
func (e Symmetric[T]) Open(key []byte) (T, error) {
	var v T
	block, err := aes.NewCipher(key)
	if err != nil {
		return v, fmt.Errorf("envelope: aes: %w", err)
	}
	if len(e.Data) < 2*aes.BlockSize || len(e.Data)%aes.BlockSize != 0 {
		return v, errMalformed
	}
	iv, ct := e.Data[:aes.BlockSize], e.Data[aes.BlockSize:]
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)
	plain, err = unpad(plain, aes.BlockSize)
	if err != nil {
		return v, err
	}
	if err := cbor.Unmarshal(plain, &v); err != nil {
		return v, fmt.Errorf("envelope: deserialize: %w", err)
	}
	return v, nil
}

func pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, errMalformed
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size {
		return nil, errMalformed
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, errMalformed
		}
	}
	return b[:len(b)-n], nil
}
