// Package frameio moves whole protocol frames across a network stream,
// pairing the stream with the growable buffer the resumable decoder
// needs.
package frameio

import (
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/qwerin/framekv-go/internal/resp"
)

// ErrPeerReset reports a peer that closed its stream in the middle of
// sending a frame.
var ErrPeerReset = errors.New("connection reset by peer")

// readChunkSize is how many bytes one stream read may add to the buffer.
const readChunkSize = 4096

// Conn owns one network stream and one growable read buffer, and moves
// whole frames across the boundary between them.
//
// The buffer logically holds at most one partially received frame, though
// a pipelining peer may leave the bytes of subsequent frames behind; those
// are served from the buffer on later calls without touching the stream.
type Conn struct {
	netConn net.Conn
	buf     []byte
	scratch []byte

	// idleTimeout bounds waiting for the first byte of a frame;
	// readTimeout bounds stream reads once a frame is under way;
	// writeTimeout bounds writing a response. Zero disables.
	idleTimeout  time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration

	closed atomic.Bool
}

// NewConn wraps an accepted network connection.
func NewConn(nc net.Conn) *Conn {
	return &Conn{
		netConn: nc,
		buf:     make([]byte, 0, readChunkSize),
		scratch: make([]byte, readChunkSize),
	}
}

// SetTimeouts configures the connection deadlines. Zero values disable
// the corresponding deadline.
func (c *Conn) SetTimeouts(idle, read, write time.Duration) {
	c.idleTimeout = idle
	c.readTimeout = read
	c.writeTimeout = write
}

// ReadFrame returns the next frame from the stream.
//
// It first attempts to decode from buffered bytes and only touches the
// stream when the decoder reports the frame incomplete. A clean shutdown
// (peer closed with an empty buffer) returns (nil, nil); a peer that
// closes mid-frame returns ErrPeerReset. A malformed frame fails
// immediately and is never retried.
func (c *Conn) ReadFrame() (*resp.Frame, error) {
	for {
		frame, n, err := resp.Decode(c.buf)
		if err == nil {
			c.buf = append(c.buf[:0], c.buf[n:]...)
			return &frame, nil
		}
		if !errors.Is(err, resp.ErrIncomplete) {
			return nil, err
		}

		if err := c.fill(); err != nil {
			if errors.Is(err, io.EOF) {
				if len(c.buf) == 0 {
					return nil, nil
				}
				return nil, ErrPeerReset
			}
			return nil, err
		}
	}
}

// fill performs one stream read into the buffer. An empty buffer means
// the connection is idle between frames; a non-empty one means a frame
// is under way, which tightens the deadline.
func (c *Conn) fill() error {
	timeout := c.idleTimeout
	if len(c.buf) > 0 {
		timeout = c.readTimeout
	}
	if timeout > 0 {
		if err := c.netConn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}

	n, err := c.netConn.Read(c.scratch)
	if n > 0 {
		c.buf = append(c.buf, c.scratch[:n]...)
		return nil
	}
	if err != nil {
		return err
	}
	return nil
}

// WriteFrame serializes f and writes it to the stream in full, so the
// caller never has to reason about partial writes.
func (c *Conn) WriteFrame(f resp.Frame) error {
	encoded, err := resp.Encode(f)
	if err != nil {
		return err
	}
	if c.writeTimeout > 0 {
		if err := c.netConn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	_, err = c.netConn.Write(encoded)
	return err
}

// Close closes the underlying stream. It is safe to call more than once.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}
