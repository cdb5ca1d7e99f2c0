package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/fxamacker/cbor/v2"

	"postbox/internal/domain"
)

// MaxFrameSize bounds a single frame. Anything larger is a protocol error.
const MaxFrameSize = 1 << 20

const lengthPrefixSize = 4

type frame struct {
	T Type            `cbor:"t"`
	B cbor.RawMessage `cbor:"b"`
}

// Codec frames and serializes packets over a stream connection. It is not
// safe for concurrent use; the protocol is strictly request/response on one
// connection so no caller needs it to be.
type Codec struct {
	conn net.Conn
}

// NewCodec wraps conn.
func NewCodec(conn net.Conn) *Codec {
	return &Codec{conn: conn}
}

// Close closes the underlying connection.
func (c *Codec) Close() error {
	return c.conn.Close()
}

// Write serializes p and sends it as one frame.
func (c *Codec) Write(p Packet) error {
	body, err := cbor.Marshal(p)
	if err != nil {
		return fmt.Errorf("wire: marshal body: %w", err)
	}
	raw, err := cbor.Marshal(frame{T: p.wireType(), B: body})
	if err != nil {
		return fmt.Errorf("wire: marshal frame: %w", err)
	}
	if len(raw) > MaxFrameSize {
		return fmt.Errorf("wire: frame too large: %d bytes", len(raw))
	}
	var hdr [lengthPrefixSize]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(raw)))
	if _, err := c.conn.Write(hdr[:]); err != nil {
		return domain.ErrDisconnected
	}
	if _, err := c.conn.Write(raw); err != nil {
		return domain.ErrDisconnected
	}
	return nil
}

// Read blocks for the next frame and decodes it into its typed packet.
// Transport failures surface as ErrDisconnected; an unknown type tag or an
// undecodable body is a protocol error.
func (c *Codec) Read() (Packet, error) {
	var hdr [lengthPrefixSize]byte
	if _, err := io.ReadFull(c.conn, hdr[:]); err != nil {
		return nil, domain.ErrDisconnected
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n == 0 || n > MaxFrameSize {
		return nil, fmt.Errorf("wire: bad frame length: %d", n)
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(c.conn, raw); err != nil {
		return nil, domain.ErrDisconnected
	}
	var f frame
	if err := cbor.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("wire: unmarshal frame: %w", err)
	}
	return decodeBody(f)
}

func decodeBody(f frame) (Packet, error) {
	var p Packet
	switch f.T {
	case TypeHandshake:
		p = &Handshake{}
	case TypeLogin:
		p = &Login{}
	case TypeCreateAccount:
		p = &CreateAccount{}
	case TypeLogout:
		p = &Logout{}
	case TypeSendMessage:
		p = &SendMessage{}
	case TypeFetchNextMessage:
		p = &FetchNextMessage{}
	case TypeHandshakeReply:
		p = &HandshakeReply{}
	case TypeAccountResult:
		p = &AccountResult{}
	case TypeSendResult:
		p = &SendResult{}
	case TypeNextMessage:
		p = &NextMessage{}
	default:
		return nil, fmt.Errorf("wire: unknown packet type: 0x%02x", uint8(f.T))
	}
	if err := cbor.Unmarshal(f.B, p); err != nil {
		return nil, fmt.Errorf("wire: unmarshal packet 0x%02x: %w", uint8(f.T), err)
	}
	return p, nil
}
