package client

import (
	"crypto/rsa"
	"fmt"
	"net"

	"postbox/internal/crypto"
	"postbox/internal/domain"
	"postbox/internal/envelope"
	"postbox/internal/wire"
)

// Session holds the client-side state established by the handshake: the
// connection, the client identity key, the server's public key, the session
// key, and the bearer token.
type Session struct {
	codec *wire.Codec

	identity   *rsa.PrivateKey
	serverKey  *rsa.PublicKey
	sessionKey []byte
	token      domain.Token

	username domain.Username
}

// Connect dials address, performs the handshake, and returns an established
// Session. Any failure before both sealed fields decrypt aborts the attempt;
// there is no retry at this layer.
func Connect(address string) (*Session, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHandshakeFailed, err)
	}
	s, err := handshake(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrHandshakeFailed, err)
	}
	return s, nil
}

func handshake(conn net.Conn) (*Session, error) {
	identity, err := crypto.GenerateIdentity()
	if err != nil {
		return nil, err
	}
	codec := wire.NewCodec(conn)
	if err := codec.Write(wire.Handshake{ClientKey: wire.FromRSA(&identity.PublicKey)}); err != nil {
		return nil, err
	}
	pkt, err := codec.Read()
	if err != nil {
		return nil, err
	}
	reply, ok := pkt.(*wire.HandshakeReply)
	if !ok {
		return nil, fmt.Errorf("unexpected packet %T", pkt)
	}
	sessionKey, err := reply.SessionKey.Open(identity)
	if err != nil {
		return nil, err
	}
	token, err := reply.Token.Open(identity)
	if err != nil {
		return nil, err
	}
	return &Session{
		codec:      codec,
		identity:   identity,
		serverKey:  reply.ServerKey.ToRSA(),
		sessionKey: sessionKey,
		token:      token,
	}, nil
}

// Username returns the identity this session last logged in as, if any.
func (s *Session) Username() (domain.Username, bool) {
	return s.username, s.username != ""
}

// Close tears down the connection. The server-side session record lives on
// until Logout or server restart.
func (s *Session) Close() error {
	return s.codec.Close()
}

// sealedToken seals the bearer token to the server's key. Every request but
// the handshake carries one.
func (s *Session) sealedToken() (envelope.Asymmetric[domain.Token], error) {
	return envelope.SealAsymmetric(s.token, s.serverKey)
}

// roundTrip sends req and reads the single response packet.
func (s *Session) roundTrip(req wire.Packet) (wire.Packet, error) {
	if err := s.codec.Write(req); err != nil {
		return nil, domain.ErrDisconnected
	}
	resp, err := s.codec.Read()
	if err != nil {
		return nil, domain.ErrDisconnected
	}
	return resp, nil
}

// Login authenticates this session against an existing account.
func (s *Session) Login(username domain.Username, password string) error {
	creds := domain.Credentials{
		Username:       username,
		PasswordDigest: crypto.DigestPassword(password),
	}
	tok, err := s.sealedToken()
	if err != nil {
		return err
	}
	sealedCreds, err := envelope.SealSymmetric(creds, s.sessionKey)
	if err != nil {
		return err
	}
	resp, err := s.roundTrip(wire.Login{Token: tok, Creds: sealedCreds})
	if err != nil {
		return err
	}
	if err := s.accountResult(resp); err != nil {
		return err
	}
	s.username = username
	return nil
}

// CreateAccount registers a new account. It does not log the session in.
func (s *Session) CreateAccount(username domain.Username, password string) error {
	creds := domain.Credentials{
		Username:       username,
		PasswordDigest: crypto.DigestPassword(password),
	}
	tok, err := s.sealedToken()
	if err != nil {
		return err
	}
	sealedCreds, err := envelope.SealSymmetric(creds, s.sessionKey)
	if err != nil {
		return err
	}
	resp, err := s.roundTrip(wire.CreateAccount{Token: tok, Creds: sealedCreds})
	if err != nil {
		return err
	}
	return s.accountResult(resp)
}

// Logout removes the server-side session. The token is dead afterwards.
func (s *Session) Logout() error {
	tok, err := s.sealedToken()
	if err != nil {
		return err
	}
	resp, err := s.roundTrip(wire.Logout{Token: tok})
	if err != nil {
		return err
	}
	if err := s.accountResult(resp); err != nil {
		return err
	}
	s.username = ""
	return nil
}

// SendMessage fans contents out to every recipient's mailbox. The server
// stamps the sender from the session; recipients are not deduplicated.
func (s *Session) SendMessage(recipients []domain.Username, contents string) error {
	tok, err := s.sealedToken()
	if err != nil {
		return err
	}
	sealedMsg, err := envelope.SealSymmetric(domain.Outbound{
		Recipients: recipients,
		Contents:   contents,
	}, s.sessionKey)
	if err != nil {
		return err
	}
	resp, err := s.roundTrip(wire.SendMessage{Token: tok, Message: sealedMsg})
	if err != nil {
		return err
	}
	switch p := resp.(type) {
	case *wire.SendResult:
		return nil
	case *wire.AccountResult:
		return s.resultError(p.Code)
	default:
		return domain.ErrInvalidResponse
	}
}

// RecvMessage long-polls for the next mailbox entry. It blocks the calling
// goroutine until the server delivers a message or the connection drops.
func (s *Session) RecvMessage() (domain.Inbound, error) {
	tok, err := s.sealedToken()
	if err != nil {
		return domain.Inbound{}, err
	}
	resp, err := s.roundTrip(wire.FetchNextMessage{Token: tok})
	if err != nil {
		return domain.Inbound{}, err
	}
	switch p := resp.(type) {
	case *wire.NextMessage:
		msg, err := p.Message.Open(s.sessionKey)
		if err != nil {
			return domain.Inbound{}, domain.ErrDecryptFail
		}
		return msg, nil
	case *wire.AccountResult:
		return domain.Inbound{}, s.resultError(p.Code)
	default:
		return domain.Inbound{}, domain.ErrInvalidResponse
	}
}

// accountResult interprets an AccountResult response.
func (s *Session) accountResult(resp wire.Packet) error {
	p, ok := resp.(*wire.AccountResult)
	if !ok {
		return domain.ErrInvalidResponse
	}
	return s.resultError(p.Code)
}

// resultError maps a wire result code to a sentinel error. An InvalidToken
// clears the remembered username, forcing re-authentication.
func (s *Session) resultError(code wire.Result) error {
	switch code {
	case wire.ResultSuccess:
		return nil
	case wire.ResultAccountExists:
		return domain.ErrAccountExists
	case wire.ResultIncorrectPassword:
		return domain.ErrIncorrectPassword
	case wire.ResultInvalidUsername:
		return domain.ErrInvalidUsername
	case wire.ResultInvalidToken:
		s.username = ""
		return domain.ErrInvalidToken
	case wire.ResultNotLoggedIn:
		return domain.ErrNotLoggedIn
	default:
		return domain.ErrInvalidResponse
	}
}
