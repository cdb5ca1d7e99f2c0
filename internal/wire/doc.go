// Package wire defines the postbox packet types and the framed codec that
// moves them over a stream connection.
//
// Framing is a 4-byte big-endian length prefix followed by a CBOR body of
// the form {t, b}: a packet type tag and the type's CBOR-encoded payload.
// Frames are capped at MaxFrameSize; a read failure of any kind surfaces as
// a disconnect to the caller.
package wire
