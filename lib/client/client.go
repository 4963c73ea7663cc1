// Copyright 2026 The LocalSim Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/knetx-controls/localsim/lib/frame"
)

// DefaultAddr is where a stock LocalSim runtime listens.
const DefaultAddr = "127.0.0.1:1963"

// DefaultTimeout bounds each request-response exchange.
const DefaultTimeout = 2 * time.Second

// req_id wraps back to 1 past this, matching what IDE builds send.
const maxReqID = 2_000_000_000

// RemoteError is a failure response from the runtime: the command was
// delivered and refused. Transport failures are ordinary errors.
type RemoteError struct {
	Cmd     string
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// Client is a persistent connection to the runtime. Safe for
// concurrent use; requests are serialized on the connection.
type Client struct {
	mu      sync.Mutex
	conn    net.Conn
	timeout time.Duration
	reqID   int64
}

// Dial connects to the runtime at addr. An empty addr means
// DefaultAddr; a zero timeout means DefaultTimeout.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	if addr == "" {
		addr = DefaultAddr
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to runtime at %s: %w", addr, err)
	}
	return &Client{conn: conn, timeout: timeout}, nil
}

// Close drops the connection. The runtime purges every force owner
// this connection registered.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

// do performs one request-response exchange and returns the response
// payload. deadline scales the configured timeout for slow commands.
func (c *Client) do(cmd string, payload any, scale int) (json.RawMessage, error) {
	body := json.RawMessage("{}")
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding %s payload: %w", cmd, err)
		}
		body = encoded
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.reqID++
	if c.reqID > maxReqID {
		c.reqID = 1
	}
	reqID := c.reqID

	if err := c.conn.SetDeadline(time.Now().Add(c.timeout * time.Duration(scale))); err != nil {
		return nil, err
	}
	if err := frame.Write(c.conn, frame.Request{Cmd: cmd, ReqID: reqID, Payload: body}); err != nil {
		return nil, fmt.Errorf("sending %s: %w", cmd, err)
	}

	raw, err := frame.ReadBody(c.conn)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", cmd, err)
	}
	var response frame.Response
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", cmd, err)
	}
	if response.ReqID != reqID {
		return nil, fmt.Errorf("%s response req_id %d, sent %d", cmd, response.ReqID, reqID)
	}
	if !response.OK {
		return nil, &RemoteError{Cmd: cmd, Message: response.Error}
	}
	return response.Payload, nil
}

// call runs cmd and decodes the payload into result when non-nil.
func (c *Client) call(cmd string, payload, result any, scale int) error {
	raw, err := c.do(cmd, payload, scale)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("decoding %s payload: %w", cmd, err)
	}
	return nil
}
