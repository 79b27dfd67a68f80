// Package client provides the frame-protocol client used by framekv-cli.
package client

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/qwerin/framekv-go/internal/frameio"
	"github.com/qwerin/framekv-go/internal/resp"
)

// ErrClosed reports a request against a client whose server hung up.
var ErrClosed = errors.New("connection closed by server")

// Client speaks the frame protocol over a single TCP connection.
// It is not safe for concurrent use.
type Client struct {
	conn *frameio.Conn
}

// Dial connects to a server. A zero timeout uses the system default.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	nc, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}

	conn := frameio.NewConn(nc)
	conn.SetTimeouts(timeout, timeout, timeout)
	return &Client{conn: conn}, nil
}

// Do sends one request frame and returns the server's reply.
func (c *Client) Do(req resp.Frame) (resp.Frame, error) {
	if err := c.conn.WriteFrame(req); err != nil {
		return resp.Frame{}, fmt.Errorf("send request: %w", err)
	}

	reply, err := c.conn.ReadFrame()
	if err != nil {
		return resp.Frame{}, fmt.Errorf("read reply: %w", err)
	}
	if reply == nil {
		return resp.Frame{}, ErrClosed
	}
	return *reply, nil
}

// Get fetches the value stored under key. The second return is false
// when the key is absent.
func (c *Client) Get(key string) ([]byte, bool, error) {
	reply, err := c.Do(resp.Array(resp.BulkString("GET"), resp.BulkString(key)))
	if err != nil {
		return nil, false, err
	}

	switch reply.Type {
	case resp.TypeNull:
		return nil, false, nil
	case resp.TypeBulk:
		return reply.Bulk, true, nil
	case resp.TypeError:
		return nil, false, errors.New(reply.Str)
	default:
		return nil, false, fmt.Errorf("unexpected reply type %q", byte(reply.Type))
	}
}

// Set stores value under key.
func (c *Client) Set(key string, value []byte) error {
	reply, err := c.Do(resp.Array(resp.BulkString("SET"), resp.BulkString(key), resp.Bulk(value)))
	if err != nil {
		return err
	}

	switch reply.Type {
	case resp.TypeSimple:
		return nil
	case resp.TypeError:
		return errors.New(reply.Str)
	default:
		return fmt.Errorf("unexpected reply type %q", byte(reply.Type))
	}
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
