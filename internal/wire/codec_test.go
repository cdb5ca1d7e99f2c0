package wire_test

import (
	"encoding/binary"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"postbox/internal/crypto"
	"postbox/internal/domain"
	"postbox/internal/envelope"
	"postbox/internal/wire"
)

// pipePair returns two codecs joined by an in-memory duplex pipe.
func pipePair(t *testing.T) (*wire.Codec, *wire.Codec) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return wire.NewCodec(a), wire.NewCodec(b)
}

func TestHandshakeRoundTrip(t *testing.T) {
	client, server := pipePair(t)

	id, err := crypto.GenerateIdentity()
	require.NoError(t, err)

	go func() {
		_ = client.Write(wire.Handshake{ClientKey: wire.FromRSA(&id.PublicKey)})
	}()

	pkt, err := server.Read()
	require.NoError(t, err)
	hs, ok := pkt.(*wire.Handshake)
	require.True(t, ok, "want *wire.Handshake, got %T", pkt)

	key := hs.ClientKey.ToRSA()
	require.Zero(t, key.N.Cmp(id.PublicKey.N))
	require.Equal(t, id.E, key.E)
}

func TestSealedPacketRoundTrip(t *testing.T) {
	client, server := pipePair(t)

	serverID, err := crypto.GenerateIdentity()
	require.NoError(t, err)
	sessionKey, err := crypto.NewSessionKey()
	require.NoError(t, err)

	tok := domain.Token{0xaa, 0xbb}
	sealedTok, err := envelope.SealAsymmetric(tok, &serverID.PublicKey)
	require.NoError(t, err)
	sealedCreds, err := envelope.SealSymmetric(domain.Credentials{
		Username:       "alice",
		PasswordDigest: crypto.DigestPassword("pw"),
	}, sessionKey)
	require.NoError(t, err)

	go func() {
		_ = client.Write(wire.Login{Token: sealedTok, Creds: sealedCreds})
	}()

	pkt, err := server.Read()
	require.NoError(t, err)
	login, ok := pkt.(*wire.Login)
	require.True(t, ok, "want *wire.Login, got %T", pkt)

	gotTok, err := login.Token.Open(serverID)
	require.NoError(t, err)
	require.Equal(t, tok, gotTok)

	creds, err := login.Creds.Open(sessionKey)
	require.NoError(t, err)
	require.Equal(t, domain.Username("alice"), creds.Username)
}

func TestReadRejectsOversizedFrame(t *testing.T) {
	a, b := net.Pipe()
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	codec := wire.NewCodec(b)

	go func() {
		var hdr [4]byte
		binary.BigEndian.PutUint32(hdr[:], wire.MaxFrameSize+1)
		_, _ = a.Write(hdr[:])
	}()

	_, err := codec.Read()
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrDisconnected)
}

func TestReadSurfacesDisconnect(t *testing.T) {
	a, b := net.Pipe()
	t.Cleanup(func() { b.Close() })
	codec := wire.NewCodec(b)
	a.Close()

	_, err := codec.Read()
	require.True(t, errors.Is(err, domain.ErrDisconnected))
}
