package fakes

import (
	"bytes"
	"io"
	"net"
	"sync"
	"time"
)

// Conn is net.Conn reading from Reader and recording writes to Writer.
type Conn struct {
	LAddr net.TCPAddr
	RAddr net.TCPAddr

	Reader io.Reader
	Writer io.Writer

	mu     sync.Mutex
	closed bool
}

// NewConn returns Conn that reads in and records writes into returned buffer.
func NewConn(in []byte) (*Conn, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Conn{
		LAddr:  net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5060},
		RAddr:  net.TCPAddr{IP: net.IPv4(127, 0, 0, 2), Port: 5060},
		Reader: bytes.NewReader(in),
		Writer: out,
	}, out
}

func (c *Conn) LocalAddr() net.Addr {
	return &c.LAddr
}

func (c *Conn) RemoteAddr() net.Addr {
	return &c.RAddr
}

// This is connection implementation
func (c *Conn) Read(p []byte) (n int, err error) {
	if c.IsClosed() {
		return 0, net.ErrClosed
	}
	return c.Reader.Read(p)
}

// This is connection implementation
func (c *Conn) Write(p []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, net.ErrClosed
	}
	return c.Writer.Write(p)
}

func (c *Conn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *Conn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Conn) SetDeadline(t time.Time) error      { return nil }
func (c *Conn) SetReadDeadline(t time.Time) error  { return nil }
func (c *Conn) SetWriteDeadline(t time.Time) error { return nil }
