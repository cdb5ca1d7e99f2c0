// Package crypto exposes the key-material primitives used by postbox:
// per-connection RSA identity generation, session-key generation, and the
// password digest sent in place of cleartext passwords.
package crypto
