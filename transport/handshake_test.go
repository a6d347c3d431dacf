package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/emiago/sipmsg/parser"
	"github.com/emiago/sipmsg/sip"
	"github.com/gobwas/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipeDialer(conn net.Conn, protocols []string) ws.Dialer {
	return ws.Dialer{
		Protocols: protocols,
		NetDial: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return conn, nil
		},
	}
}

func TestWSHandshake(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	type result struct {
		msg sip.Message
		err error
	}
	done := make(chan result, 1)
	go func() {
		server, err := UpgradeWS(serverConn)
		if err != nil {
			done <- result{err: err}
			return
		}
		msg, err := server.ReadMessage()
		done <- result{msg: msg, err: err}
	}()

	client, err := dialWS(ctx, pipeDialer(clientConn, WebSocketProtocols), "ws://biloxi.example.com/")
	require.NoError(t, err)

	msg, err := parser.ParseMessage([]byte(testOptions))
	require.NoError(t, err)
	require.NoError(t, client.WriteMessage(msg))

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, msg.String(), r.msg.String())
	case <-ctx.Done():
		t.Fatal("server did not receive message")
	}
}

func TestWSHandshakeNoSipProtocol(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	done := make(chan error, 1)
	go func() {
		_, err := UpgradeWS(serverConn)
		done <- err
	}()

	_, err := dialWS(ctx, pipeDialer(clientConn, []string{"chat"}), "ws://biloxi.example.com/")
	require.NoError(t, err)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrWSProtocol)
	case <-ctx.Done():
		t.Fatal("upgrade did not finish")
	}
}
