package ipc

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Client is a synchronous IPC client. One request is in flight at a
// time; all methods are safe for concurrent use.
type Client struct {
	mu      sync.Mutex
	conn    net.Conn
	nextID  atomic.Uint32
	timeout time.Duration
}

// Dial connects to the daemon socket.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", socketPath, err)
	}
	return &Client{conn: conn, timeout: 10 * time.Second}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// roundTrip sends a request and waits for the matching response.
func (c *Client) roundTrip(msgType MessageType, req any) (*Message, error) {
	var payload []byte
	if req != nil {
		var err error
		payload, err = Encode(req)
		if err != nil {
			return nil, err
		}
	}

	id := c.nextID.Add(1)
	msg := NewMessage(msgType, id, payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetDeadline(time.Now().Add(c.timeout))
	if err := msg.Write(c.conn); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	for {
		resp, err := ReadMessage(c.conn)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		// Skip stale responses from an earlier timed-out request.
		if resp.Header.RequestID != id {
			continue
		}
		if resp.Header.Type == MsgError {
			var e ErrorResponse
			if err := Decode(resp.Payload, &e); err != nil {
				return nil, fmt.Errorf("daemon error (undecodable): %w", err)
			}
			return nil, fmt.Errorf("daemon error %d: %s", e.Code, e.Message)
		}
		return resp, nil
	}
}

// Ping checks that the daemon is responsive.
func (c *Client) Ping() error {
	resp, err := c.roundTrip(MsgPing, nil)
	if err != nil {
		return err
	}
	if resp.Header.Type != MsgPong {
		return fmt.Errorf("unexpected response type 0x%04x", uint16(resp.Header.Type))
	}
	return nil
}

// Status fetches daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	resp, err := c.roundTrip(MsgStatusRequest, nil)
	if err != nil {
		return nil, err
	}
	var st StatusResponse
	if err := Decode(resp.Payload, &st); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &st, nil
}

// GetAttrs fetches the current tunable attribute values.
func (c *Client) GetAttrs() (map[string]int, error) {
	resp, err := c.roundTrip(MsgGetAttrs, nil)
	if err != nil {
		return nil, err
	}
	var ga GetAttrsResponse
	if err := Decode(resp.Payload, &ga); err != nil {
		return nil, fmt.Errorf("decode attrs: %w", err)
	}
	return ga.Attrs, nil
}

// SetAttr sets one tunable attribute.
func (c *Client) SetAttr(name string, value int) error {
	resp, err := c.roundTrip(MsgSetAttr, &SetAttrRequest{Name: name, Value: value})
	if err != nil {
		return err
	}
	var sa SetAttrResponse
	if err := Decode(resp.Payload, &sa); err != nil {
		return fmt.Errorf("decode set response: %w", err)
	}
	if !sa.Success {
		return fmt.Errorf("set %s: %s", name, sa.Error)
	}
	return nil
}
