package transport

import (
	"bytes"
	"io"
	"net"
	"sync"

	"braces.dev/errtrace"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/emiago/sipmsg/parser"
	"github.com/emiago/sipmsg/sip"
)

var bufPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// WSConn carries SIP messages over an established WebSocket connection.
// RFC 7118: each text or binary frame holds exactly one SIP message.
// Handshake, listening and dialing are left to the caller.
type WSConn struct {
	net.Conn

	parser *parser.Parser
	log    zerolog.Logger
	state  ws.State

	reader  *wsutil.Reader
	control wsutil.FrameHandlerFunc

	mu sync.Mutex
}

// WSOption configures WSConn.
type WSOption func(c *WSConn)

// WithWSParser sets parser used for incoming messages.
func WithWSParser(p *parser.Parser) WSOption {
	return func(c *WSConn) {
		c.parser = p
	}
}

// WithWSLogger sets connection logger.
func WithWSLogger(l zerolog.Logger) WSOption {
	return func(c *WSConn) {
		c.log = l
	}
}

// NewWSConn wraps conn that already passed WebSocket handshake.
// clientSide must be true on the dialing side, client frames are masked.
func NewWSConn(conn net.Conn, clientSide bool, opts ...WSOption) *WSConn {
	state := ws.StateServerSide
	if clientSide {
		state = ws.StateClientSide
	}

	c := &WSConn{
		Conn:   conn,
		parser: parser.NewParser(),
		log:    log.Logger.With().Str("caller", "transport<WS>").Logger(),
		state:  state,
	}
	for _, o := range opts {
		o(c)
	}

	// Control replies write to conn and must not interleave with WriteMessage
	handler := wsutil.ControlFrameHandler(conn, state)
	c.control = func(h ws.Header, r io.Reader) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		return handler(h, r)
	}
	c.reader = &wsutil.Reader{
		Source:         conn,
		State:          state,
		CheckUTF8:      true,
		OnIntermediate: c.control,
	}
	return c
}

// ReadMessage blocks until next SIP message arrives.
// Ping and close frames are answered, keep-alive frames with only
// whitespace are skipped. On close frame wsutil.ClosedError is returned.
func (c *WSConn) ReadMessage() (sip.Message, error) {
	for {
		data, err := c.readFrame()
		if err != nil {
			return nil, err
		}

		if len(bytes.TrimSpace(data)) == 0 {
			c.log.Debug().Str("raddr", c.remoteAddr()).Msg("keep-alive frame skipped")
			continue
		}

		msg, err := c.parser.Parse(data)
		if err != nil {
			c.log.Debug().Err(err).Str("raddr", c.remoteAddr()).Msg("failed to parse message")
			return nil, err
		}
		return msg, nil
	}
}

func (c *WSConn) readFrame() ([]byte, error) {
	for {
		header, err := c.reader.NextFrame()
		if err != nil {
			return nil, errtrace.Wrap(err)
		}

		if header.OpCode.IsControl() {
			if err := c.control(header, c.reader); err != nil {
				return nil, errtrace.Wrap(err)
			}
			continue
		}

		if header.OpCode&(ws.OpText|ws.OpBinary) == 0 {
			c.log.Debug().Int("opcode", int(header.OpCode)).Msg("dropping frame")
			if err := c.reader.Discard(); err != nil {
				return nil, errtrace.Wrap(err)
			}
			continue
		}

		data, err := io.ReadAll(c.reader)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		return data, nil
	}
}

// WriteMessage renders msg and sends it in one text frame.
func (c *WSConn) WriteMessage(msg sip.Message) error {
	buf := bufPool.Get().(*bytes.Buffer)
	defer bufPool.Put(buf)
	buf.Reset()
	msg.StringWrite(buf)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := wsutil.WriteMessage(c.Conn, c.state, ws.OpText, buf.Bytes()); err != nil {
		return errtrace.Wrap(err)
	}
	return nil
}

// Close sends close frame and closes underlying connection.
func (c *WSConn) Close() error {
	c.mu.Lock()
	// Peer may be gone already, close the socket anyway.
	err := ws.WriteFrame(c.Conn, c.closeFrame())
	c.mu.Unlock()

	if cerr := c.Conn.Close(); cerr != nil {
		return errtrace.Wrap(cerr)
	}
	if err != nil {
		c.log.Debug().Err(err).Str("raddr", c.remoteAddr()).Msg("close frame not sent")
	}
	return nil
}

func (c *WSConn) closeFrame() ws.Frame {
	f := ws.NewCloseFrame(ws.NewCloseFrameBody(ws.StatusNormalClosure, ""))
	if c.state.ClientSide() {
		f = ws.MaskFrameInPlace(f)
	}
	return f
}

func (c *WSConn) remoteAddr() string {
	if addr := c.Conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
