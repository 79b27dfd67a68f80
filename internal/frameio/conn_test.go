package frameio

import (
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/qwerin/framekv-go/internal/resp"
)

func TestConn_ReadFrame_SingleWrite(t *testing.T) {
	client, srv := net.Pipe()
	c := NewConn(srv)
	defer c.Close()

	go func() {
		client.Write([]byte("*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n"))
		client.Close()
	}()

	frame, err := c.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if frame == nil {
		t.Fatal("ReadFrame() = nil frame")
	}
	want := resp.Array(resp.BulkString("GET"), resp.BulkString("foo"))
	if !frame.Equal(want) {
		t.Errorf("ReadFrame() = %v, want %v", frame, want)
	}
}

// A frame arriving one byte at a time must decode once complete: every
// intermediate read leaves the buffer intact and triggers another pull
// from the stream.
func TestConn_ReadFrame_ByteAtATime(t *testing.T) {
	client, srv := net.Pipe()
	c := NewConn(srv)
	defer c.Close()

	payload := []byte("*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$5\r\nhello\r\n")
	go func() {
		for _, b := range payload {
			client.Write([]byte{b})
		}
		client.Close()
	}()

	frame, err := c.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	want := resp.Array(resp.BulkString("SET"), resp.BulkString("k"), resp.BulkString("hello"))
	if !frame.Equal(want) {
		t.Errorf("ReadFrame() = %v, want %v", frame, want)
	}
}

// Pipelined frames are served from the buffer without further stream
// reads, then the stream end is observed cleanly.
func TestConn_ReadFrame_Pipelined(t *testing.T) {
	client, srv := net.Pipe()
	c := NewConn(srv)
	defer c.Close()

	go func() {
		client.Write([]byte("+first\r\n:2\r\n"))
		client.Close()
	}()

	frame, err := c.ReadFrame()
	if err != nil {
		t.Fatalf("first ReadFrame() error = %v", err)
	}
	if !frame.Equal(resp.Simple("first")) {
		t.Errorf("first frame = %v", frame)
	}

	frame, err = c.ReadFrame()
	if err != nil {
		t.Fatalf("second ReadFrame() error = %v", err)
	}
	if !frame.Equal(resp.Integer(2)) {
		t.Errorf("second frame = %v", frame)
	}

	frame, err = c.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() after close error = %v, want clean nil", err)
	}
	if frame != nil {
		t.Errorf("ReadFrame() after close = %v, want nil", frame)
	}
}

func TestConn_ReadFrame_CleanClose(t *testing.T) {
	client, srv := net.Pipe()
	c := NewConn(srv)
	defer c.Close()

	go client.Close()

	frame, err := c.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v, want nil for clean shutdown", err)
	}
	if frame != nil {
		t.Errorf("ReadFrame() = %v, want nil", frame)
	}
}

func TestConn_ReadFrame_PeerClosedMidFrame(t *testing.T) {
	client, srv := net.Pipe()
	c := NewConn(srv)
	defer c.Close()

	go func() {
		client.Write([]byte("$10\r\nshort"))
		client.Close()
	}()

	_, err := c.ReadFrame()
	if !errors.Is(err, ErrPeerReset) {
		t.Errorf("ReadFrame() error = %v, want ErrPeerReset", err)
	}
}

func TestConn_ReadFrame_Malformed(t *testing.T) {
	client, srv := net.Pipe()
	c := NewConn(srv)
	defer c.Close()

	go func() {
		client.Write([]byte("?bogus\r\n"))
	}()

	_, err := c.ReadFrame()
	if !errors.Is(err, resp.ErrMalformed) {
		t.Errorf("ReadFrame() error = %v, want ErrMalformed", err)
	}
}

func TestConn_ReadFrame_IdleTimeout(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()
	c := NewConn(srv)
	defer c.Close()

	c.SetTimeouts(20*time.Millisecond, 20*time.Millisecond, 0)

	_, err := c.ReadFrame()
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Errorf("ReadFrame() error = %v, want timeout", err)
	}
}

func TestConn_WriteFrame(t *testing.T) {
	client, srv := net.Pipe()
	c := NewConn(srv)
	defer c.Close()

	done := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 64)
		n, _ := client.Read(buf)
		done <- buf[:n]
	}()

	if err := c.WriteFrame(resp.Simple("OK")); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}

	got := <-done
	if string(got) != "+OK\r\n" {
		t.Errorf("wire bytes = %q, want %q", got, "+OK\r\n")
	}
}

func TestConn_WriteFrame_RejectsBadFrame(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()
	c := NewConn(srv)
	defer c.Close()

	err := c.WriteFrame(resp.Simple("bad\r\nframe"))
	if !errors.Is(err, resp.ErrMalformed) {
		t.Errorf("WriteFrame() error = %v, want ErrMalformed", err)
	}
}

func TestConn_CloseIdempotent(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()
	c := NewConn(srv)

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
}

var _ io.Closer = (*Conn)(nil)
