package transport

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"net"
	"slices"

	"braces.dev/errtrace"
	"github.com/gobwas/ws"
)

var (
	// WebSocketProtocols is used in setting websocket header
	// By default clients must accept protocol sip
	WebSocketProtocols = []string{"sip"}

	ErrWSProtocol = errors.New("websocket client did not offer sip subprotocol")
)

// UpgradeWS runs server side handshake on accepted conn.
// Client must offer one of WebSocketProtocols.
func UpgradeWS(conn net.Conn, opts ...WSOption) (*WSConn, error) {
	u := ws.Upgrader{
		Protocol: func(proto []byte) bool {
			return slices.Contains(WebSocketProtocols, string(proto))
		},
	}

	hs, err := u.Upgrade(conn)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	if hs.Protocol == "" {
		conn.Close()
		return nil, errtrace.Wrap(ErrWSProtocol)
	}
	return NewWSConn(conn, false, opts...), nil
}

// DialWS connects to ws:// or wss:// url. tlsConf is used only for wss.
func DialWS(ctx context.Context, url string, tlsConf *tls.Config, opts ...WSOption) (*WSConn, error) {
	return dialWS(ctx, ws.Dialer{
		Protocols: WebSocketProtocols,
		TLSConfig: tlsConf,
	}, url, opts...)
}

func dialWS(ctx context.Context, dialer ws.Dialer, url string, opts ...WSOption) (*WSConn, error) {
	conn, br, _, err := dialer.Dial(ctx, url)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	// Server may send frames right after handshake response
	if br != nil {
		conn = &bufferedConn{Conn: conn, r: br}
	}
	return NewWSConn(conn, true, opts...), nil
}

type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(b []byte) (int, error) {
	return c.r.Read(b)
}
