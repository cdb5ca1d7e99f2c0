// Package envelope provides the two sealed containers of the postbox
// protocol.
//
//   - Asymmetric[T] carries small, high-value secrets (the session key, every
//     per-request bearer token) encrypted to a recipient's RSA public key.
//   - Symmetric[T] carries bulk payloads (credentials, message bodies)
//     encrypted under the session key with AES-CBC and PKCS#7 padding.
//
// Payloads are CBOR-serialized before encryption. Each symmetric seal draws a
// fresh random IV and prepends it to the ciphertext.
package envelope
