package wire

import (
	"crypto/rsa"
	"math/big"

	"postbox/internal/domain"
	"postbox/internal/envelope"
)

// Type tags a packet on the wire.
type Type uint8

// Client to server.
const (
	TypeHandshake Type = 0x01 + iota
	TypeLogin
	TypeCreateAccount
	TypeLogout
	TypeSendMessage
	TypeFetchNextMessage
)

// Server to client.
const (
	TypeHandshakeReply Type = 0x81 + iota
	TypeAccountResult
	TypeSendResult
	TypeNextMessage
)

// Result is the outcome code carried by AccountResult and SendResult.
type Result uint8

const (
	ResultSuccess Result = iota
	ResultAccountExists
	ResultIncorrectPassword
	ResultInvalidUsername
	ResultInvalidToken
	ResultNotLoggedIn
)

// Packet is implemented by every wire packet.
type Packet interface {
	wireType() Type
}

// PublicKey is the wire form of an RSA public key.
type PublicKey struct {
	N []byte `cbor:"n"`
	E int    `cbor:"e"`
}

// FromRSA converts an RSA public key to its wire form.
func FromRSA(k *rsa.PublicKey) PublicKey {
	return PublicKey{N: k.N.Bytes(), E: k.E}
}

// ToRSA converts the wire form back to an RSA public key.
func (k PublicKey) ToRSA() *rsa.PublicKey {
	return &rsa.PublicKey{N: new(big.Int).SetBytes(k.N), E: k.E}
}

// Handshake opens a session: the client presents its identity key.
type Handshake struct {
	ClientKey PublicKey `cbor:"k"`
}

// HandshakeReply completes a session: the server's identity key travels in
// clear, the session key and token sealed to the client's key.
type HandshakeReply struct {
	ServerKey  PublicKey                         `cbor:"k"`
	SessionKey envelope.Asymmetric[[]byte]       `cbor:"s"`
	Token      envelope.Asymmetric[domain.Token] `cbor:"t"`
}

// Login authenticates a session against an existing account.
type Login struct {
	Token envelope.Asymmetric[domain.Token]      `cbor:"t"`
	Creds envelope.Symmetric[domain.Credentials] `cbor:"c"`
}

// CreateAccount registers a new account.
type CreateAccount struct {
	Token envelope.Asymmetric[domain.Token]      `cbor:"t"`
	Creds envelope.Symmetric[domain.Credentials] `cbor:"c"`
}

// Logout ends a session, invalidating its token.
type Logout struct {
	Token envelope.Asymmetric[domain.Token] `cbor:"t"`
}

// SendMessage fans a message out to its recipients' mailboxes.
type SendMessage struct {
	Token   envelope.Asymmetric[domain.Token]   `cbor:"t"`
	Message envelope.Symmetric[domain.Outbound] `cbor:"m"`
}

// FetchNextMessage long-polls for the oldest undelivered message.
type FetchNextMessage struct {
	Token envelope.Asymmetric[domain.Token] `cbor:"t"`
}

// AccountResult reports the outcome of Login, CreateAccount, and Logout.
type AccountResult struct {
	Code Result `cbor:"r"`
}

// SendResult reports the outcome of SendMessage.
type SendResult struct {
	Code Result `cbor:"r"`
}

// NextMessage delivers a mailbox entry, sealed to the session key.
type NextMessage struct {
	Message envelope.Symmetric[domain.Inbound] `cbor:"m"`
}

func (Handshake) wireType() Type { return TypeHandshake }

func (Login) wireType() Type { return TypeLogin }

func (CreateAccount) wireType() Type { return TypeCreateAccount }

func (Logout) wireType() Type { return TypeLogout }

func (SendMessage) wireType() Type { return TypeSendMessage }

func (FetchNextMessage) wireType() Type { return TypeFetchNextMessage }

func (HandshakeReply) wireType() Type { return TypeHandshakeReply }

func (AccountResult) wireType() Type { return TypeAccountResult }

func (SendResult) wireType() Type { return TypeSendResult }

func (NextMessage) wireType() Type { return TypeNextMessage }
