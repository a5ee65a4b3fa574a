package netrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

const defaultTimeout = 5 * time.Second

// Fault is a remote-side failure carried inside a reply envelope.
type Fault struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (f *Fault) Error() string {
	return fmt.Sprintf("netrpc: fault %d: %s", f.Code, f.Message)
}

type requestEnvelope struct {
	Args []any `json:"args"`
}

type replyEnvelope struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *Fault          `json:"error,omitempty"`
}

// Conn is one open request/response channel to the remote endpoint.
type Conn interface {
	Send(args []any) error
	Receive() (any, error)
	Close() error
}

// Dialer opens a Conn for a single request cycle.
type Dialer interface {
	Dial(ctx context.Context, addr string) (Conn, error)
}

// TCPDialer dials plain TCP connections speaking the framed envelope format.
type TCPDialer struct {
	// Timeout bounds the dial and each send/receive. Zero means 5s.
	Timeout time.Duration
	Limits  Limits
}

func (d *TCPDialer) timeout() time.Duration {
	if d.Timeout <= 0 {
		return defaultTimeout
	}
	return d.Timeout
}

func (d *TCPDialer) limits() Limits {
	if d.Limits.MaxPayloadBytes == 0 {
		return DefaultLimits()
	}
	return d.Limits
}

func (d *TCPDialer) Dial(ctx context.Context, addr string) (Conn, error) {
	dialer := net.Dialer{Timeout: d.timeout()}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("netrpc: dial %s: %w", addr, err)
	}
	return &tcpConn{conn: conn, limits: d.limits(), timeout: d.timeout()}, nil
}

type tcpConn struct {
	conn    net.Conn
	limits  Limits
	timeout time.Duration
}

func (c *tcpConn) Send(args []any) error {
	body, err := json.Marshal(requestEnvelope{Args: args})
	if err != nil {
		return fmt.Errorf("netrpc: encode request: %w", err)
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	return WriteFrame(c.conn, body, c.limits)
}

func (c *tcpConn) Receive() (any, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	payload, err := ReadFrame(c.conn, c.limits)
	if err != nil {
		return nil, err
	}

	var reply replyEnvelope
	if err := json.Unmarshal(payload, &reply); err != nil {
		return nil, fmt.Errorf("netrpc: decode reply: %w", err)
	}
	if !reply.OK {
		if reply.Error != nil {
			return nil, reply.Error
		}
		return nil, errors.New("netrpc: fault reply without detail")
	}

	var result any
	if len(reply.Result) > 0 {
		if err := json.Unmarshal(reply.Result, &result); err != nil {
			return nil, fmt.Errorf("netrpc: decode result: %w", err)
		}
	}
	return result, nil
}

func (c *tcpConn) Close() error {
	return c.conn.Close()
}
