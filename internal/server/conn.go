package server

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"net"

	"gopkg.in/op/go-logging.v1"

	"postbox/internal/crypto"
	"postbox/internal/domain"
	"postbox/internal/envelope"
	"postbox/internal/wire"
)

// connection dispatches requests for one accepted stream. It owns a
// per-connection RSA identity; the key pair never outlives the connection.
type connection struct {
	s     *Server
	log   *logging.Logger
	codec *wire.Codec

	identity *rsa.PrivateKey
}

func newConnection(s *Server, conn net.Conn, id uint64) *connection {
	return &connection{
		s:     s,
		log:   s.logBackend.GetLogger(fmt.Sprintf("conn:%d", id)),
		codec: wire.NewCodec(conn),
	}
}

// run reads request packets until the peer disconnects or a protocol error
// makes the connection unrecoverable. Business failures are reported in-band
// and leave the connection open.
func (c *connection) run() {
	defer c.codec.Close()

	identity, err := crypto.GenerateIdentity()
	if err != nil {
		c.log.Errorf("identity generation: %v", err)
		return
	}
	c.identity = identity

	for {
		pkt, err := c.codec.Read()
		if err != nil {
			if !errors.Is(err, domain.ErrDisconnected) {
				c.log.Warningf("closing: %v", err)
			}
			return
		}
		if err := c.dispatch(pkt); err != nil {
			c.log.Warningf("closing: %v", err)
			return
		}
	}
}

func (c *connection) dispatch(pkt wire.Packet) error {
	switch p := pkt.(type) {
	case *wire.Handshake:
		return c.onHandshake(p)
	case *wire.Login:
		return c.onLogin(p)
	case *wire.CreateAccount:
		return c.onCreateAccount(p)
	case *wire.Logout:
		return c.onLogout(p)
	case *wire.SendMessage:
		return c.onSendMessage(p)
	case *wire.FetchNextMessage:
		return c.onFetchNextMessage(p)
	default:
		return fmt.Errorf("unexpected packet %T", pkt)
	}
}

// onHandshake registers a fresh session and returns the server identity key
// with the session key and token sealed to the client's key. A repeated
// handshake on the same connection simply issues another session.
func (c *connection) onHandshake(p *wire.Handshake) error {
	clientKey := p.ClientKey.ToRSA()
	tok, sessionKey, err := c.s.sessions.Create(clientKey)
	if err != nil {
		return fmt.Errorf("session create: %w", err)
	}
	sealedKey, err := envelope.SealAsymmetric(sessionKey, clientKey)
	if err != nil {
		return fmt.Errorf("seal session key: %w", err)
	}
	sealedTok, err := envelope.SealAsymmetric(tok, clientKey)
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}
	c.log.Debugf("handshake complete, issued session %v", tok)
	return c.codec.Write(wire.HandshakeReply{
		ServerKey:  wire.FromRSA(&c.identity.PublicKey),
		SessionKey: sealedKey,
		Token:      sealedTok,
	})
}

// resolve opens a sealed token and authenticates it. A decryption failure is
// a protocol error and fatal; an unknown token is a business failure and
// reported as ok == false.
func (c *connection) resolve(sealed envelope.Asymmetric[domain.Token]) (domain.Token, domain.Session, bool, error) {
	tok, err := sealed.Open(c.identity)
	if err != nil {
		return domain.Token{}, domain.Session{}, false, fmt.Errorf("open token: %w", err)
	}
	sess, ok := c.s.sessions.Authenticate(tok)
	return tok, sess, ok, nil
}

func (c *connection) onLogin(p *wire.Login) error {
	tok, sess, ok, err := c.resolve(p.Token)
	if err != nil {
		return err
	}
	if !ok {
		return c.codec.Write(wire.AccountResult{Code: wire.ResultInvalidToken})
	}
	creds, err := p.Creds.Open(sess.Key)
	if err != nil {
		return fmt.Errorf("open credentials: %w", err)
	}
	if !c.s.accounts.Verify(creds.Username, creds.PasswordDigest) {
		return c.codec.Write(wire.AccountResult{Code: wire.ResultIncorrectPassword})
	}
	// The session can vanish between Authenticate and here if a concurrent
	// logout wins the race.
	if !c.s.sessions.SetUsername(tok, creds.Username) {
		return c.codec.Write(wire.AccountResult{Code: wire.ResultInvalidToken})
	}
	c.log.Infof("login: %v", creds.Username)
	return c.codec.Write(wire.AccountResult{Code: wire.ResultSuccess})
}

func (c *connection) onCreateAccount(p *wire.CreateAccount) error {
	_, sess, ok, err := c.resolve(p.Token)
	if err != nil {
		return err
	}
	if !ok {
		return c.codec.Write(wire.AccountResult{Code: wire.ResultInvalidToken})
	}
	creds, err := p.Creds.Open(sess.Key)
	if err != nil {
		return fmt.Errorf("open credentials: %w", err)
	}
	switch err := c.s.accounts.Create(creds.Username, creds.PasswordDigest); {
	case errors.Is(err, domain.ErrInvalidUsername):
		return c.codec.Write(wire.AccountResult{Code: wire.ResultInvalidUsername})
	case errors.Is(err, domain.ErrAccountExists):
		return c.codec.Write(wire.AccountResult{Code: wire.ResultAccountExists})
	case err != nil:
		return err
	}
	c.log.Infof("account created: %v", creds.Username)
	return c.codec.Write(wire.AccountResult{Code: wire.ResultSuccess})
}

func (c *connection) onLogout(p *wire.Logout) error {
	tok, err := p.Token.Open(c.identity)
	if err != nil {
		return fmt.Errorf("open token: %w", err)
	}
	if !c.s.sessions.Remove(tok) {
		return c.codec.Write(wire.AccountResult{Code: wire.ResultInvalidToken})
	}
	c.log.Debugf("logout: session %v removed", tok)
	return c.codec.Write(wire.AccountResult{Code: wire.ResultSuccess})
}

func (c *connection) onSendMessage(p *wire.SendMessage) error {
	_, sess, ok, err := c.resolve(p.Token)
	if err != nil {
		return err
	}
	if !ok {
		return c.codec.Write(wire.AccountResult{Code: wire.ResultInvalidToken})
	}
	if !sess.LoggedIn() {
		return c.codec.Write(wire.AccountResult{Code: wire.ResultNotLoggedIn})
	}
	msg, err := p.Message.Open(sess.Key)
	if err != nil {
		return fmt.Errorf("open message: %w", err)
	}
	// Fan-out is per recipient, not transactional; duplicates in the list
	// deliver twice.
	for _, recipient := range msg.Recipients {
		c.s.mailboxes.Enqueue(recipient, domain.Inbound{
			Sender:     sess.Username,
			Recipients: msg.Recipients,
			Contents:   msg.Contents,
		})
	}
	c.log.Debugf("message from %v fanned out to %d recipients", sess.Username, len(msg.Recipients))
	return c.codec.Write(wire.SendResult{Code: wire.ResultSuccess})
}

func (c *connection) onFetchNextMessage(p *wire.FetchNextMessage) error {
	_, sess, ok, err := c.resolve(p.Token)
	if err != nil {
		return err
	}
	if !ok {
		return c.codec.Write(wire.AccountResult{Code: wire.ResultInvalidToken})
	}
	if !sess.LoggedIn() {
		return c.codec.Write(wire.AccountResult{Code: wire.ResultNotLoggedIn})
	}
	msg, err := c.s.mailboxes.Dequeue(sess.Username, c.s.cfg.Debug.FetchDeadlineDuration())
	if err != nil {
		return fmt.Errorf("dequeue for %v: %w", sess.Username, err)
	}
	sealed, err := envelope.SealSymmetric(msg, sess.Key)
	if err != nil {
		return fmt.Errorf("seal message: %w", err)
	}
	return c.codec.Write(wire.NextMessage{Message: sealed})
}
